package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-desktop/internal/application/session"
	"github.com/jhoicas/inventario-desktop/pkg/logger"
)

// Engine API del motor que consume la capa de presentación.
type Engine interface {
	session.Items
	session.Movements
	session.Queries
	session.Lifecycle
	session.Exports
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine   Engine
	Registry *prometheus.Registry // nil = sin /metrics
	Logger   *logger.Logger
	Token    string // Bearer token de la API; vacío = sin token (solo tests)
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	if deps.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api", LocalGuard(deps.Token))

	// Session
	sessionHandler := NewSessionHandler(deps.Engine, deps.Engine, log)
	sess := api.Group("/session")
	sess.Get("/", sessionHandler.State)
	sess.Post("/new", sessionHandler.New)
	sess.Post("/open", sessionHandler.Open)
	sess.Post("/save", sessionHandler.Save)
	sess.Post("/close", sessionHandler.Close)
	sess.Post("/export", sessionHandler.Export)

	// Items (las rutas fijas antes de /:id)
	itemHandler := NewItemHandler(deps.Engine, deps.Engine, log)
	movementHandler := NewMovementHandler(deps.Engine, log)
	items := api.Group("/items")
	items.Get("/", itemHandler.List)
	items.Post("/", itemHandler.Create)
	items.Get("/low-stock", itemHandler.LowStock)
	items.Get("/suggest", itemHandler.Suggest)
	items.Get("/replenishment", itemHandler.Replenishment)
	items.Get("/:id", itemHandler.GetByID)
	items.Patch("/:id", itemHandler.Update)
	items.Delete("/:id", itemHandler.Delete)
	items.Get("/:id/movements", movementHandler.History)

	api.Get("/summary", itemHandler.Summary)

	// Movements
	movements := api.Group("/movements")
	movements.Post("/", movementHandler.Apply)
	movements.Post("/batch", movementHandler.ApplyBatch)
}
