package routes

import (
	"github.com/Dosada05/sports-auction/handlers"
	"github.com/Dosada05/sports-auction/middleware"
	"github.com/Dosada05/sports-auction/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes собирает всё дерево маршрутов. Публичный контур — просмотр
// турниров, подача заявок, согласия, live-табло и WebSocket-фид.
// Управление аукционом закрыто ролью admin.
func SetupRoutes(
	router *chi.Mux,
	authenticator *middleware.Authenticator,
	allowedOrigins []string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	registrationHandler *handlers.RegistrationHandler,
	teamHandler *handlers.TeamHandler,
	playerHandler *handlers.PlayerHandler,
	queueHandler *handlers.QueueHandler,
	auctionHandler *handlers.AuctionHandler,
	consentHandler *handlers.ConsentHandler,
	profileHandler *handlers.ProfileHandler,
	liveHandler *handlers.LiveHandler,
	webSocketHandler *handlers.WebSocketHandler,
	reconcileHandler *handlers.ReconcileHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты.
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/live", liveHandler.Snapshot)
		r.Get("/{tournamentID}/teams", teamHandler.List)
		r.Post("/{tournamentID}/registrations", registrationHandler.Register)
		r.Get("/{tournamentID}/consents", consentHandler.Get)
		r.Post("/{tournamentID}/consents", consentHandler.Submit)

		// Управление турниром — только админ.
		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Post("/", tournamentHandler.Create)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatus)

			r.Get("/{tournamentID}/registrations", registrationHandler.List)
			r.Post("/{tournamentID}/registrations/promote", registrationHandler.PromoteRoster)

			r.Post("/{tournamentID}/teams", teamHandler.Create)

			r.Get("/{tournamentID}/players/available", playerHandler.ListAvailable)

			r.Get("/{tournamentID}/queue", queueHandler.List)
			r.Post("/{tournamentID}/queue", queueHandler.Enqueue)
			r.Post("/{tournamentID}/queue/batch", queueHandler.BatchEnqueue)

			r.Post("/{tournamentID}/bids", auctionHandler.RecordBid)
		})
	})

	router.Route("/registrations", func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.Authorize(models.RoleAdmin))
		r.Post("/{registrationID}/verify", registrationHandler.Verify)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetByID)

		// Вишлист и правки — владелец команды или админ (решает сервис).
		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)

			r.Put("/{teamID}", teamHandler.Update)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)
			r.Get("/{teamID}/preferred", teamHandler.ListPreferred)
			r.Post("/{teamID}/preferred", teamHandler.UpsertPreferred)
			r.Delete("/{teamID}/preferred/{playerID}", teamHandler.DeletePreferred)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Delete("/{teamID}", teamHandler.Delete)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/{playerID}", playerHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Post("/{playerID}/photo", playerHandler.UploadPhoto)
		})
	})

	router.Route("/queue", func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.Authorize(models.RoleAdmin))
		r.Delete("/{queueItemID}", queueHandler.Remove)
		r.Patch("/{queueItemID}/position", queueHandler.Reorder)
	})

	router.Route("/rounds", func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.Authorize(models.RoleAdmin))
		r.Post("/{roundID}/undo", auctionHandler.UndoRound)
	})

	router.Route("/admin/reconciliation", func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.Authorize(models.RoleAdmin))
		r.Get("/{tournamentID}", reconcileHandler.Reconcile)
	})

	router.Route("/profiles", func(r chi.Router) {
		r.Get("/{profileID}", profileHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)
			r.Put("/", profileHandler.Upsert)
			r.Put("/users/{userID}", profileHandler.Upsert)
			r.Post("/{profileID}/photo", profileHandler.UploadPhoto)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
