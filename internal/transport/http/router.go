package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/otpgate/internal/application/account"
	"github.com/otpgate/internal/application/otp"
	"github.com/otpgate/internal/application/session"
	"github.com/otpgate/internal/audit"
	"github.com/otpgate/internal/config"
	"github.com/otpgate/internal/store"
	"github.com/otpgate/internal/transport/http/handler"
	appmiddleware "github.com/otpgate/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Docs     *store.Store
	Notifier otp.Notifier
	Trail    *audit.Logger
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(appmiddleware.Recover)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	accountSvc := account.NewService(deps.Docs)
	otpSvc := otp.NewService(deps.Docs, deps.Notifier, cfg.OTPTTL)
	sessionSvc := session.NewService(deps.Docs)

	authH := handler.NewAuthHandler(accountSvc, otpSvc, sessionSvc, deps.Trail)
	healthH := handler.NewHealthHandler()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Post("/register", authH.Register)
		r.Post("/login", authH.Login)
		r.Post("/verify_login", authH.VerifyLogin)
	})

	return r
}
