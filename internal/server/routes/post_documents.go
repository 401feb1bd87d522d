package routes

import (
	"encoding/json"
	"net/http"

	"github.com/neurograph-hq/neurograph/internal/queue"
	"github.com/neurograph-hq/neurograph/internal/server/middleware"
	"github.com/neurograph-hq/neurograph/internal/storage"
	"github.com/neurograph-hq/neurograph/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// PostDocumentHandler accepts a multipart document upload, stores it in
// object storage, and enqueues it for ingestion by a worker.
func PostDocumentHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}
	typeHint := c.FormValue("type_hint")

	file, err := fileHeader.Open()
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	defer file.Close()

	documentID, err := gonanoid.New()
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	objectKey, err := storage.PutFile(ctx, app.S3, fileHeader.Filename, documentID, file)
	if err != nil {
		logger.Error("[Server] Failed to store upload", "file", fileHeader.Filename, "err", err)
		return c.String(http.StatusInternalServerError, err.Error())
	}

	msg := queue.IngestDocumentMsg{
		Message:    "Ingest uploaded document",
		DocumentID: documentID,
		ObjectKey:  objectKey,
		FileName:   fileHeader.Filename,
		TypeHint:   typeHint,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msgBytes); err != nil {
		logger.Error("[Server] Failed to enqueue document", "document_id", documentID, "err", err)
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"document_id": documentID,
		"file_name":   fileHeader.Filename,
	})
}
