package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerStatusValid(t *testing.T) {
	assert.True(t, PlayerStatusAvailable.Valid())
	assert.True(t, PlayerStatusInAuction.Valid())
	assert.True(t, PlayerStatusAllocated.Valid())
	assert.True(t, PlayerStatusUnallocated.Valid())
	assert.False(t, PlayerStatus("SOLD").Valid())
	assert.False(t, PlayerStatus("").Valid())
}

func TestPlayerStatusTransitions(t *testing.T) {
	cases := []struct {
		from    PlayerStatus
		to      PlayerStatus
		allowed bool
	}{
		{PlayerStatusAvailable, PlayerStatusInAuction, true},
		{PlayerStatusAvailable, PlayerStatusAllocated, true},
		{PlayerStatusAvailable, PlayerStatusUnallocated, false},
		{PlayerStatusUnallocated, PlayerStatusInAuction, true},
		{PlayerStatusUnallocated, PlayerStatusAllocated, true},
		{PlayerStatusUnallocated, PlayerStatusAvailable, false},
		{PlayerStatusInAuction, PlayerStatusAllocated, true},
		{PlayerStatusInAuction, PlayerStatusAvailable, true},
		{PlayerStatusInAuction, PlayerStatusUnallocated, true},
		{PlayerStatusAllocated, PlayerStatusAvailable, true},
		{PlayerStatusAllocated, PlayerStatusUnallocated, true},
		{PlayerStatusAllocated, PlayerStatusInAuction, true},
		// Переход в самого себя всегда разрешён.
		{PlayerStatusAllocated, PlayerStatusAllocated, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"transition %s -> %s", tc.from, tc.to)
	}
}

func TestPlayerStatusBiddable(t *testing.T) {
	assert.True(t, PlayerStatusAvailable.Biddable())
	assert.True(t, PlayerStatusUnallocated.Biddable())
	assert.True(t, PlayerStatusInAuction.Biddable())
	assert.False(t, PlayerStatusAllocated.Biddable())
}

func TestConsentChoiceValid(t *testing.T) {
	assert.True(t, ConsentOpenAuction.Valid())
	assert.True(t, ConsentCategoryPool.Valid())
	assert.False(t, ConsentChoice("SILENT").Valid())
}
