package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"insightapi/internal/service"
	"insightapi/internal/session"
)

// presignExpiry bounds how long a transcript download link stays valid.
const presignExpiry = 15 * time.Minute

// HealthCheck reports service status together with server time and the
// environment name. A reachable but unhealthy registry degrades the status;
// it does not fail the endpoint.
func HealthCheck(env string, db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "ok"
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				status = "degraded"
			}
		}
		return c.JSON(fiber.Map{
			"status": status,
			"time":   time.Now().UTC().Format(time.RFC3339),
			"env":    env,
		})
	}
}

// LivenessProbe is a bare liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadTranscript handles a single multipart upload (field name: file) and
// responds with {ok: true, path: <locator>} or {error: <message>}.
func UploadTranscript(svc service.TranscriptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeUploadError(c, fiber.StatusBadRequest, "No file uploaded.")
		}

		f, err := fh.Open()
		if err != nil {
			return writeUploadError(c, fiber.StatusBadRequest, "No file uploaded.")
		}
		defer f.Close()

		tr, err := svc.Ingest(c.UserContext(), f, fh.Filename, fh.Header.Get("Content-Type"), fh.Size)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrReaderNil), errors.Is(err, service.ErrFilenameRequired):
				return writeUploadError(c, fiber.StatusBadRequest, "No file uploaded.")
			case errors.Is(err, service.ErrStorageUnavailable):
				return writeUploadError(c, fiber.StatusServiceUnavailable, "Storage not configured on server.")
			default:
				return writeUploadError(c, fiber.StatusInternalServerError, "Upload failed.")
			}
		}

		return c.JSON(fiber.Map{"ok": true, "path": tr.Locator})
	}
}

// UploadTranscriptBatch handles a multi-file selection (repeated file fields)
// and reduces it to a single aggregate status.
func UploadTranscriptBatch(svc service.UploadBatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil || len(form.File["file"]) == 0 {
			return writeUploadError(c, fiber.StatusBadRequest, "No files uploaded.")
		}

		files := make([]service.BatchFile, 0, len(form.File["file"]))
		for _, fh := range form.File["file"] {
			f, err := fh.Open()
			if err != nil {
				return writeUploadError(c, fiber.StatusBadRequest, "Cannot open uploaded file.")
			}
			defer f.Close()
			files = append(files, service.BatchFile{
				Reader:      f,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			})
		}

		res, err := svc.UploadAll(c.UserContext(), files)
		if err != nil {
			status := fiber.StatusInternalServerError
			switch {
			case errors.Is(err, service.ErrReaderNil), errors.Is(err, service.ErrFilenameRequired):
				status = fiber.StatusBadRequest
			case errors.Is(err, service.ErrStorageUnavailable):
				status = fiber.StatusServiceUnavailable
			}
			batchStatus := service.BatchStatusFailed
			if res != nil {
				batchStatus = res.Status
			}
			return c.Status(status).JSON(fiber.Map{"status": batchStatus, "error": "Upload failed."})
		}
		return c.JSON(res)
	}
}

type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
}

// Chat submits one conversation turn. Backend failures do not surface as
// HTTP errors: they come back as a synthetic assistant turn with a 200.
func Chat(mgr *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return writeUploadError(c, fiber.StatusBadRequest, "Invalid JSON body.")
		}
		if req.SessionID == "" {
			return writeUploadError(c, fiber.StatusBadRequest, "sessionId is required.")
		}

		reply, history, err := mgr.SubmitTurn(c.UserContext(), req.SessionID, req.Query)
		if err != nil {
			// Only blank queries are rejected; the history is untouched.
			return writeUploadError(c, fiber.StatusBadRequest, "query is required.")
		}

		return c.JSON(fiber.Map{"reply": reply, "history": history})
	}
}

// ListTranscripts returns registry rows with limit & offset.
func ListTranscripts(svc service.TranscriptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			if errors.Is(err, service.ErrRegistryUnavailable) {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "registry unavailable")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetTranscript returns one registry row by ID.
func GetTranscript(svc service.TranscriptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		tr, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return translateRegistryError(c, err)
		}
		return c.JSON(tr)
	}
}

// DeleteTranscript removes a transcript from the store and the registry.
func DeleteTranscript(svc service.TranscriptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return translateRegistryError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadTranscript returns a time-limited URL for the stored object.
func DownloadTranscript(svc service.TranscriptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.PresignDownload(c.UserContext(), id, presignExpiry)
		if err != nil {
			return translateRegistryError(c, err)
		}
		return c.JSON(fiber.Map{"url": u, "expires_in_seconds": int(presignExpiry.Seconds())})
	}
}

func translateRegistryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "transcript not found")
	case errors.Is(err, service.ErrRegistryUnavailable), errors.Is(err, service.ErrStorageUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
