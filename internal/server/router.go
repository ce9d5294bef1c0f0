package server

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"drivenpass/internal/account"
	"drivenpass/internal/handler"
	"drivenpass/internal/hub"
	"drivenpass/internal/middleware"
	"drivenpass/internal/vault"
)

type Deps struct {
	Accounts    *account.Service
	Credentials *vault.Store[vault.CredentialFields]
	Networks    *vault.Store[vault.NetworkFields]
	Hub         *hub.Hub
	Ping        func(ctx context.Context) error
	Logger      *slog.Logger
	// Registry defaults to a fresh registry.
	Registry *prometheus.Registry
	// AuthLimiter guards sign-up and sign-in when set.
	AuthLimiter *middleware.RateLimiter
}

func NewRouter(deps Deps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(reg)

	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(metrics.Middleware())

	health := &handler.HealthHandler{Ping: deps.Ping}
	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	gate := middleware.RequireAuth(deps.Accounts)

	users := &handler.UserHandler{Accounts: deps.Accounts, Log: log}
	public := r.Group("/users")
	if deps.AuthLimiter != nil {
		limit := middleware.RateLimitMiddleware(deps.AuthLimiter)
		public.POST("/signup", limit, users.SignUp)
		public.POST("/signin", limit, users.SignIn)
	} else {
		public.POST("/signup", users.SignUp)
		public.POST("/signin", users.SignIn)
	}
	public.POST("/signout", gate, users.SignOut)

	credentials := &handler.SecretHandler[vault.CredentialFields]{Store: deps.Credentials, Bind: handler.BindCredential, Log: log}
	creds := r.Group("/credentials", gate)
	creds.GET("", credentials.List)
	creds.GET("/:id", credentials.Get)
	creds.POST("", credentials.Create)
	creds.DELETE("/:id", credentials.Delete)

	networks := &handler.SecretHandler[vault.NetworkFields]{Store: deps.Networks, Bind: handler.BindNetwork, Log: log}
	nets := r.Group("/networks", gate)
	nets.GET("", networks.List)
	nets.GET("/:id", networks.Get)
	nets.POST("", networks.Create)
	nets.DELETE("/:id", networks.Delete)

	if deps.Hub != nil {
		events := &handler.EventsHandler{Hub: deps.Hub, Log: log}
		r.GET("/events", middleware.RequireAuth(deps.Accounts, middleware.AllowQueryToken()), events.Serve)
	}

	return r
}
