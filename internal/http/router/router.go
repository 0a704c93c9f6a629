package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/CobrasOrg/auth-service/internal/health"
	"github.com/CobrasOrg/auth-service/internal/http/handler"
	"github.com/CobrasOrg/auth-service/internal/http/middleware"
	"github.com/CobrasOrg/auth-service/internal/http/response"
	"github.com/CobrasOrg/auth-service/internal/service"
)

type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	TokenService   *service.TokenService
	CORSOrigins    []string
	BodyLimitBytes int64
	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	bodyLimit := dep.BodyLimitBytes
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20
	}
	r.Use(middleware.BodyLimit(bodyLimit))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.ErrorWithData(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	requireAuth := middleware.RequireAuth(dep.TokenService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register/owner", dep.AuthHandler.RegisterOwner)
			r.Post("/register/clinic", dep.AuthHandler.RegisterClinic)
			r.Post("/login", dep.AuthHandler.Login)
			// Logout and verify read the bearer token themselves: logout
			// must accept structurally valid expired tokens, and verify
			// reports its own 401 semantics.
			r.Post("/logout", dep.AuthHandler.Logout)
			r.Get("/verify", dep.AuthHandler.Verify)
			r.Post("/password/forgot", dep.AuthHandler.ForgotPassword)
			r.Post("/password/reset", dep.AuthHandler.ResetPassword)
			r.With(requireAuth).Post("/password/change", dep.AuthHandler.ChangePassword)
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", dep.UserHandler.Me)
			r.Patch("/", dep.UserHandler.UpdateMe)
			r.Delete("/", dep.UserHandler.DeleteMe)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
