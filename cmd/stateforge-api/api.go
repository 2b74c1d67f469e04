// Package main provides the StateForge API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/stateforge/stateforge/pkg/directory"
	"github.com/stateforge/stateforge/pkg/eventbus"
	"github.com/stateforge/stateforge/pkg/persistence"
	"github.com/stateforge/stateforge/pkg/pipeline"
	"github.com/stateforge/stateforge/pkg/services"
	"github.com/stateforge/stateforge/pkg/validation"
	"github.com/stateforge/stateforge/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	directory   directory.Directory
	types       pipeline.TypeSource
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	dir directory.Directory,
	types pipeline.TypeSource,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		directory:   dir,
		types:       types,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflows := a.persistence.WorkflowRepository()
	artifacts := a.persistence.ArtifactRepository()

	dispatchers := pipeline.NewDispatcherRegistry()
	dispatchers.Register(pipeline.NewNotifyDispatcher(a.eventBus))
	dispatchers.Register(pipeline.NewGenerateDispatcher(a.eventBus))

	executor := pipeline.NewExecutor(a.types, artifacts, a.directory, dispatchers, a.eventBus, a.logger)

	importService := services.NewImport(workflows, validation.NewDataValidator(a.directory), a.logger)
	workflowService := services.NewWorkflow(workflows)
	transitionService := services.NewTransition(workflows, artifacts, executor, a.logger)

	handlers := web.NewAPIHandlers(importService, workflowService, transitionService, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("StateForge API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.ImportWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	app.Get("/import-reports/:id", handlers.GetErrorReport)

	app.Post("/artifacts/:id/transitions", handlers.RequestTransition)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
