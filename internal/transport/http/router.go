package http

import (
	"net/http"

	"github.com/expertresume/notification-api/internal/application/email"
	"github.com/expertresume/notification-api/internal/application/verification"
	"github.com/expertresume/notification-api/internal/config"
	"github.com/expertresume/notification-api/internal/infrastructure/dynamo"
	"github.com/expertresume/notification-api/internal/infrastructure/pdf"
	s3infra "github.com/expertresume/notification-api/internal/infrastructure/s3"
	"github.com/expertresume/notification-api/internal/infrastructure/ses"
	"github.com/expertresume/notification-api/internal/infrastructure/sns"
	"github.com/expertresume/notification-api/internal/transport/http/handler"
	appmiddleware "github.com/expertresume/notification-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	VerificationRepo *dynamo.VerificationRepo
	EmailLogRepo     *dynamo.EmailLogRepo
	UnsubscribeRepo  *dynamo.UnsubscribeRepo
	UserRepo         *dynamo.UserRepo
	Relay            ses.Relay
	SMSSender        sns.SMSSender
	PDFRenderer      pdf.Renderer
	Archive          *s3infra.ArchiveStore // nil disables invoice archival
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to the dispatching endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	emailDeps := email.ServiceDeps{
		Users:        deps.UserRepo,
		Unsubscribes: deps.UnsubscribeRepo,
		Logs:         deps.EmailLogRepo,
		Relay:        deps.Relay,
		PDF:          deps.PDFRenderer,
		FromName:     cfg.EmailFromName,
		FromAddress:  cfg.EmailFromAddress,
		Bcc:          cfg.EmailBcc,
	}
	if deps.Archive != nil {
		emailDeps.Archive = deps.Archive
	}
	emailSvc := email.NewService(emailDeps)

	verificationSvc := verification.NewService(verification.ServiceDeps{
		Codes: deps.VerificationRepo,
		SMS:   deps.SMSSender,
		Email: emailSvc,
	})

	healthH := handler.NewHealthHandler()
	verificationH := handler.NewVerificationHandler(verificationSvc)
	emailH := handler.NewEmailHandler(emailSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Get("/verification-codes", verificationH.Describe)
		r.With(sensitiveRL.Limit).Post("/verification-codes", verificationH.Request)
		r.With(sensitiveRL.Limit).Post("/verification-codes/verify", verificationH.Verify)

		r.With(sensitiveRL.Limit).Post("/notifications/email", emailH.Send)
	})

	return r
}
