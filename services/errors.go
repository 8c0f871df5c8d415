package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrPasswordTooShort        = errors.New("password is too short")
	ErrTeamNameRequired        = errors.New("team name is required")
	ErrBudgetInvalid           = errors.New("team budget must be non-negative")
	ErrBidAmountInvalid        = errors.New("bid amount must be non-negative")
	ErrBidBelowBasePrice       = errors.New("bid amount is below the player's base price")
	ErrBidIncrementViolation   = errors.New("bid amount does not respect the minimum bid increment")
	ErrInsufficientBudget      = errors.New("team has insufficient remaining budget")
	ErrTeamRosterFull          = errors.New("team has already reached its maximum number of players")
	ErrPlayerNotBiddable       = errors.New("player is not available for bidding")
	ErrPlayerNotQueueable      = errors.New("player is not available for queueing")
	ErrInvalidStatusTransition = errors.New("invalid player status transition")
	ErrConsentChoiceInvalid    = errors.New("invalid auction consent choice")
	ErrQueuePositionInvalid    = errors.New("queue position must be positive")

	// Ошибки конфликтов
	ErrUserEmailConflict         = errors.New("email address is already in use")
	ErrTeamNameConflict          = errors.New("team name is already in use")
	ErrTournamentNameConflict    = errors.New("tournament name already exists")
	ErrPlayerAlreadyQueued       = errors.New("player already has an unprocessed queue entry for this tournament")
	ErrRegistrationEmailConflict = errors.New("a registration with this email already exists for this tournament")
	ErrQueueItemProcessed        = errors.New("queue item has already been processed")
	ErrRoundAlreadyUndone        = errors.New("auction round is already undone")

	// Загрузка файлов без настроенного хранилища
	ErrUploadsDisabled = errors.New("file uploads are disabled: storage is not configured")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound         = errors.New("user not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrQueueItemNotFound    = errors.New("auction queue item not found")
	ErrRoundNotFound        = errors.New("auction round not found")
	ErrRegistrationNotFound = errors.New("tournament registration not found")
	ErrConsentNotFound      = errors.New("auction consent not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrPreferredNotFound    = errors.New("preferred player entry not found")
)
