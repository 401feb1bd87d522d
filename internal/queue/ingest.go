package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neurograph-hq/neurograph/internal/storage"
	"github.com/neurograph-hq/neurograph/pkg/document"
	"github.com/neurograph-hq/neurograph/pkg/graph"
	"github.com/neurograph-hq/neurograph/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// IngestDocumentMsg is the payload published to the ingest queue for each
// uploaded document. TypeHint carries the uploader's category choice and
// is consulted by the trust engine.
type IngestDocumentMsg struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
	ObjectKey  string `json:"object_key"`
	FileName   string `json:"file_name"`
	TypeHint   string `json:"type_hint"`
}

// ProcessIngestMessage downloads the uploaded document from object storage
// and runs the ingestion pipeline over it. A returned error sends the
// message to the retry queue.
func ProcessIngestMessage(
	ctx context.Context,
	client *s3.Client,
	pipeline *graph.Pipeline,
	msgBody string,
) error {
	var data IngestDocumentMsg
	if err := json.Unmarshal([]byte(msgBody), &data); err != nil {
		return fmt.Errorf("failed to unmarshal ingest message: %w", err)
	}

	if data.ObjectKey == "" || data.FileName == "" {
		return fmt.Errorf("ingest message missing object key or file name")
	}

	logger.Info("[Queue] Ingesting document", "document_id", data.DocumentID, "file", data.FileName)

	content, err := storage.GetFile(ctx, client, data.ObjectKey)
	if err != nil {
		return fmt.Errorf("failed to fetch document from storage: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "ingest-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// keep the upload name so the document node is keyed by it
	tmpPath := filepath.Join(tmpDir, filepath.Base(data.FileName))
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write temp document: %w", err)
	}

	source, err := document.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}

	result, err := pipeline.IngestDocument(ctx, graph.IngestRequest{
		Source:   source,
		TypeHint: data.TypeHint,
	})
	if err != nil {
		return fmt.Errorf("failed to ingest document: %w", err)
	}

	logger.Info(
		"[Queue] Document ingested",
		"document", result.Document,
		"trust", result.TrustScore,
		"pages", result.Pages,
		"triples", result.Triples,
	)

	return nil
}
