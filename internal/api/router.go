package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api/middleware"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/dexscreener"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/notify"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/realtime"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	System        *service.SystemService
	Portfolios    *service.PortfolioService
	Alerts        *service.AlertService
	Export        *service.ExportService
	EmailSettings *service.EmailSettingsService
	Preferences   *service.PreferencesService
	Admin         *service.AdminService
	Auth          *service.AuthService

	Prices   dexscreener.Client
	Sounds   *notify.SoundLibrary
	Player   *notify.Player
	Notifier *notify.BrowserNotifier
	Hub      *realtime.Hub
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Get("/ws", handlers.NewEventsHandler(svc.Hub, cfg.CORS.AllowedOrigins, log).Events)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/auth/session", func(r chi.Router) {
			authHandler := handlers.NewAuthHandler(svc.Auth)
			r.Get("/", authHandler.Session)
			r.Post("/", authHandler.SignIn)
			r.Delete("/", authHandler.SignOut)
		})

		r.Route("/portfolios", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolios, svc.Export)
			positionHandler := handlers.NewPositionHandler(svc.Portfolios)

			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)
			r.Get("/active", portfolioHandler.ActivePortfolio)
			r.Put("/active", portfolioHandler.SetActivePortfolio)

			r.Route("/{portfolioId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateIDParam("portfolioId"))
				r.Put("/", portfolioHandler.UpdatePortfolio)
				r.Delete("/", portfolioHandler.DeletePortfolio)
				r.Post("/refresh", portfolioHandler.RefreshPortfolio)
				r.Get("/export", portfolioHandler.ExportPortfolio)
				r.Post("/positions", positionHandler.CreatePosition)

				r.Route("/positions/{positionId}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateIDParam("positionId"))
					r.Put("/", positionHandler.UpdatePosition)
					r.Delete("/", positionHandler.DeletePosition)
				})
			})
		})

		r.Get("/tokens/{address}", handlers.NewTokenHandler(svc.Prices).LookupToken)

		r.Route("/alerts", func(r chi.Router) {
			alertHandler := handlers.NewAlertHandler(svc.Alerts)
			r.Get("/", alertHandler.Alerts)
			r.Post("/", alertHandler.CreateAlert)

			r.Route("/{alertId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateIDParam("alertId"))
				r.Put("/", alertHandler.UpdateAlert)
				r.Delete("/", alertHandler.DeleteAlert)
			})
		})

		r.Route("/email-settings", func(r chi.Router) {
			emailHandler := handlers.NewEmailSettingsHandler(svc.EmailSettings)
			r.Get("/", emailHandler.Settings)
			r.Put("/", emailHandler.UpdateSettings)
			r.Post("/addresses", emailHandler.AddAddress)
			r.Delete("/addresses/{address}", emailHandler.RemoveAddress)
		})

		r.Route("/sounds", func(r chi.Router) {
			soundHandler := handlers.NewSoundHandler(svc.Sounds, svc.Player, svc.Preferences)
			r.Get("/", soundHandler.Sounds)
			r.Post("/", soundHandler.UploadSound)
			r.Post("/stop", soundHandler.StopSound)
			r.Delete("/{soundId}", soundHandler.DeleteSound)
			r.Get("/{soundId}/audio", soundHandler.Audio)
			r.Post("/{soundId}/test", soundHandler.TestSound)
		})

		r.Route("/notifications", func(r chi.Router) {
			notificationHandler := handlers.NewNotificationHandler(svc.Notifier, svc.Hub)
			r.Get("/", notificationHandler.Notifications)
			r.Get("/permission", notificationHandler.Permission)
			r.Post("/permission", notificationHandler.RequestPermission)

			r.With(custommiddleware.ValidateIDParam("notificationId")).
				Post("/{notificationId}/dismiss", notificationHandler.DismissNotification)
		})

		r.Route("/preferences", func(r chi.Router) {
			preferencesHandler := handlers.NewPreferencesHandler(svc.Preferences)
			r.Get("/", preferencesHandler.Preferences)
			r.Put("/", preferencesHandler.UpdatePreferences)
		})

		r.Route("/admin", func(r chi.Router) {
			adminHandler := handlers.NewAdminHandler(svc.Admin)
			r.Post("/login", adminHandler.Login)
			r.Post("/password-reset", adminHandler.PasswordReset)

			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.RequireAdmin(svc.Admin))
				r.Post("/logout", adminHandler.Logout)
				r.Get("/import/template", adminHandler.ImportTemplate)
				r.Post("/import", adminHandler.Import)
			})
		})
	})

	return r
}
