package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insightapi/docs"
	"insightapi/internal/agent"
	"insightapi/internal/config"
	"insightapi/internal/database"
	"insightapi/internal/database/migration"
	handlers "insightapi/internal/http/handler"
	"insightapi/internal/http/middleware"
	"insightapi/internal/otel"
	"insightapi/internal/repository"
	"insightapi/internal/repository/postgres"
	"insightapi/internal/service"
	"insightapi/internal/session"
	"insightapi/internal/storage"
)

// @title Interview Insight API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Tracing: degrades to noop on exporter failure, never blocks startup
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	} else {
		defer shutdownTracing(ctx)
	}

	// Transcript registry is optional; the service runs without it and only
	// the registry endpoints report unavailable.
	var db *sql.DB
	var repo repository.TranscriptRepository
	if cfg.Database.Configured() {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logStartupEvent("registry_unavailable", map[string]any{"error": err.Error()})
		} else {
			defer db.Close()
			if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
				log.Fatalf("failed to run migrations: %v", err)
			}
			repo = postgres.NewTranscriptPostgres(db)
		}
	} else {
		logStartupEvent("registry_not_configured", nil)
	}

	// Transcript store is optional too: with no store every upload reports
	// storage unavailable instead of the process refusing to start.
	var objStore storage.Storage
	if cfg.Storage.Configured() {
		objStore, err = storage.NewMinIO(cfg.Storage)
		if err != nil {
			logStartupEvent("storage_unavailable", map[string]any{"error": err.Error()})
			objStore = nil
		}
	} else {
		logStartupEvent("storage_not_configured", nil)
	}

	// Q&A agent client; nil means chat answers with the unreachable notice.
	var agentCli agent.Client
	if cfg.Agent.Configured() {
		agentCli, err = agent.NewHTTP(cfg.Agent)
		if err != nil {
			logStartupEvent("agent_unavailable", map[string]any{"error": err.Error()})
			agentCli = nil
		}
	} else {
		logStartupEvent("agent_not_configured", nil)
	}

	trSvc := service.NewTranscriptService(objStore, repo)
	batchSvc := service.NewUploadBatchService(trSvc)
	mgr := session.NewManager(agentCli)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to set up metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, cfg.Env, db, trSvc, batchSvc, mgr)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// logStartupEvent emits one JSON line about an optional dependency's state.
func logStartupEvent(event string, extra map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": "warn",
		"msg":   event,
	}
	for k, v := range extra {
		entry[k] = v
	}
	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
