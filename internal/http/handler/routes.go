package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"insightapi/internal/service"
	"insightapi/internal/session"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay minimal and free of business logic; db may be nil when the
// registry is unconfigured.
func RegisterRoutes(app *fiber.App, env string, db *sql.DB, trSvc service.TranscriptService, batchSvc service.UploadBatchService, mgr *session.Manager) {
	// Health readout consumed by the landing page; includes env name.
	app.Get("/health", HealthCheck(env, db))

	// Bare liveness probe
	app.Get("/healthz", LivenessProbe())

	// Ingestion: single file (multipart/form-data, field name: file)
	app.Post("/upload", UploadTranscript(trSvc))

	// Ingestion: one user-initiated multi-file batch, processed sequentially
	app.Post("/upload/batch", UploadTranscriptBatch(batchSvc))

	// Conversation turn against the transcript Q&A agent
	app.Post("/chat", Chat(mgr))

	// Transcript registry
	app.Get("/transcripts", ListTranscripts(trSvc))
	app.Get("/transcripts/:id", GetTranscript(trSvc))
	app.Delete("/transcripts/:id", DeleteTranscript(trSvc))
	app.Get("/transcripts/:id/download", DownloadTranscript(trSvc))
}
