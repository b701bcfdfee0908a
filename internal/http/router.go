package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mymd/clinic-backend/internal/auth"
	"github.com/mymd/clinic-backend/internal/http/handlers"
	"github.com/mymd/clinic-backend/internal/middleware"
	"github.com/mymd/clinic-backend/internal/repo"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	signer *auth.Signer,
	userRepo repo.UserRepo,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", handlers.HandleHealth)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/send-otp", authHandler.HandleSendOTP)
		r.Post("/verify-otp", authHandler.HandleVerifyOTP)
		r.Post("/refresh-token", authHandler.HandleRefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(signer, userRepo))
			r.Get("/profile", profileHandler.HandleGetProfile)
			r.Put("/profile", profileHandler.HandleUpdateProfile)
			r.Post("/change-password", profileHandler.HandleChangePassword)
			r.Post("/deactivate", profileHandler.HandleDeactivate)
			r.Delete("/account", profileHandler.HandleDeleteAccount)
		})
	})

	return r
}
