// Package handlers exposes the REST API over Fiber.
package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/jogo/internal/analytics"
	"github.com/seuros/jogo/internal/auth"
	"github.com/seuros/jogo/internal/calendar"
	"github.com/seuros/jogo/internal/funnels"
	"github.com/seuros/jogo/internal/httpx"
	"github.com/seuros/jogo/internal/middleware"
	"github.com/seuros/jogo/internal/store"
)

// Options wires the handler to its collaborators.
type Options struct {
	Store         store.Store
	Calendar      calendar.Calendar
	Geo           analytics.CountryResolver
	Tokens        *auth.Issuer
	Environment   string
	Version       string
	DefaultPeriod int
	ProxyMode     string // see httpx.ClientIP
}

// Handler serves every /api route.
type Handler struct {
	store    store.Store
	cal      calendar.Calendar
	tracker  *analytics.Tracker
	reporter *analytics.Reporter
	funnels  *funnels.Service
	auth     *auth.Service

	env           string
	version       string
	defaultPeriod int
	proxyMode     string
}

func New(o Options) *Handler {
	period := o.DefaultPeriod
	if period == 0 {
		period = analytics.DefaultPeriod
	}
	return &Handler{
		store:         o.Store,
		cal:           o.Calendar,
		tracker:       analytics.NewTracker(o.Store, o.Calendar, o.Geo),
		reporter:      analytics.NewReporter(o.Store, o.Calendar),
		funnels:       funnels.NewService(o.Store, o.Calendar),
		auth:          auth.NewService(o.Store, o.Tokens),
		env:           o.Environment,
		version:       o.Version,
		defaultPeriod: period,
		proxyMode:     o.ProxyMode,
	}
}

// Mount registers the API routes and the catch-all 404 on app.
func (h *Handler) Mount(app *fiber.App) {
	requireAuth := middleware.Auth(h.auth)

	app.Get("/up", h.HandleUp)

	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.HandleRegister)
	authGroup.Post("/login", h.HandleLogin)
	authGroup.Get("/me", requireAuth, h.HandleMe)

	funnelGroup := api.Group("/funnels", requireAuth)
	funnelGroup.Get("/", h.HandleListFunnels)
	funnelGroup.Post("/", h.HandleCreateFunnel)
	funnelGroup.Get("/:id", h.HandleGetFunnel)
	funnelGroup.Put("/:id", h.HandleUpdateFunnel)
	funnelGroup.Delete("/:id", h.HandleDeleteFunnel)
	funnelGroup.Put("/:id/publish", h.HandleTogglePublish)
	funnelGroup.Post("/:id/duplicate", h.HandleDuplicateFunnel)

	analyticsGroup := api.Group("/analytics")
	analyticsGroup.Post("/track", h.HandleTrack)
	analyticsGroup.Get("/dashboard", requireAuth, h.HandleDashboard)
	analyticsGroup.Get("/funnel/:id", requireAuth, h.HandleFunnelAnalytics)

	templateGroup := api.Group("/templates")
	templateGroup.Get("/", h.HandleListTemplates)
	templateGroup.Get("/categories", h.HandleTemplateCategories)
	templateGroup.Get("/featured/list", h.HandleFeaturedTemplates)
	templateGroup.Get("/:id", h.HandleGetTemplate)
	templateGroup.Post("/:id/use", requireAuth, h.HandleUseTemplate)

	userGroup := api.Group("/users", requireAuth)
	userGroup.Put("/profile", h.HandleUpdateProfile)
	userGroup.Put("/password", h.HandleChangePassword)
	userGroup.Get("/stats", h.HandleUserStats)

	app.Use(httpx.NotFound)
}
