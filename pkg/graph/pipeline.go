package graph

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/neurograph-hq/neurograph/pkg/document"
	"github.com/neurograph-hq/neurograph/pkg/logger"
	"github.com/neurograph-hq/neurograph/pkg/store"
	"github.com/neurograph-hq/neurograph/pkg/trust"
)

// trust scoring samples this many leading pages of the document
const trustSamplePages = 3

// TrustScorer assesses a document's trustworthiness. Satisfied by
// trust.Engine.
type TrustScorer interface {
	Score(ctx context.Context, input trust.Input) trust.Assessment
}

// Pipeline orchestrates document ingestion: trust scoring once per
// document, then per page content fusion, knowledge extraction, and graph
// merging. Pages are processed in strict order; weight averaging is only
// correct when writes are serialized per edge key, so the pipeline never
// runs two merges concurrently.
type Pipeline struct {
	assembler *Assembler
	extractor *Extractor
	trust     TrustScorer
	store     store.GraphStore
}

// NewPipelineParams wires the pipeline's collaborators.
type NewPipelineParams struct {
	Assembler *Assembler
	Extractor *Extractor
	Trust     TrustScorer
	Store     store.GraphStore
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(params NewPipelineParams) *Pipeline {
	return &Pipeline{
		assembler: params.Assembler,
		extractor: params.Extractor,
		trust:     params.Trust,
		store:     params.Store,
	}
}

// IngestRequest describes one document to ingest. TypeHint is an optional
// upload-time category hint consulted by the trust engine.
type IngestRequest struct {
	Source   document.Source
	TypeHint string
}

// IngestResult summarizes a completed ingestion run.
type IngestResult struct {
	Document   string  `json:"document"`
	TrustScore float64 `json:"trust_score"`
	Pages      int     `json:"pages"`
	Triples    int     `json:"triples"`
}

// IngestDocument runs the full pipeline for one document. Failures of a
// single figure, page, or triple write are logged and skipped; an
// unreadable document or an unreachable graph store aborts the run.
func (p *Pipeline) IngestDocument(
	ctx context.Context,
	request IngestRequest,
) (*IngestResult, error) {
	name := request.Source.Name()

	pages, err := request.Source.NumPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read page count of %s: %w", name, err)
	}

	logger.Info("[Graph] starting ingestion", "document", name, "pages", pages)

	assessment := p.trust.Score(ctx, trust.Input{
		Sample:   p.leadingSample(ctx, request.Source, pages),
		Title:    strings.TrimSuffix(name, filepath.Ext(name)),
		TypeHint: request.TypeHint,
	})
	logger.Info(
		"[Graph] trust assessed",
		"document", name,
		"score", assessment.Score,
		"source", assessment.Provenance.Source,
	)

	if err := p.store.UpsertDocument(ctx, name, assessment.Score); err != nil {
		return nil, fmt.Errorf("failed to upsert document %s: %w", name, err)
	}

	total := 0
	for index := 1; index <= pages; index++ {
		count, err := p.processPage(ctx, request.Source, name, index, assessment.Score)
		if err != nil {
			return nil, err
		}
		total += count
	}

	logger.Info("[Graph] ingestion complete", "document", name, "triples", total)

	return &IngestResult{
		Document:   name,
		TrustScore: assessment.Score,
		Pages:      pages,
		Triples:    total,
	}, nil
}

// processPage fuses, extracts, and merges one page. Extraction failures
// and single-triple write failures are logged and skipped; only prompt
// configuration errors abort the document.
func (p *Pipeline) processPage(
	ctx context.Context,
	source document.Source,
	name string,
	index int,
	trustScore float64,
) (int, error) {
	page, err := source.Page(ctx, index)
	if err != nil {
		logger.Warn("[Graph] failed to load page", "document", name, "page", index, "error", err)
		return 0, nil
	}

	fused, err := p.assembler.FusePage(ctx, page)
	if err != nil {
		return 0, fmt.Errorf("failed to assemble page %d of %s: %w", index, name, err)
	}

	triples, err := p.extractor.Extract(ctx, fused)
	if err != nil {
		logger.Warn("[Graph] extraction failed", "document", name, "page", index, "error", err)
		return 0, nil
	}

	written := 0
	for _, triple := range triples {
		up := store.TripleUpsert{
			Subject:   triple.Subject,
			Predicate: NormalizePredicate(triple.Predicate),
			Object:    triple.Object,
			Document:  name,
			Trust:     trustScore,
		}
		if err := p.store.UpsertTriple(ctx, up); err != nil {
			logger.Warn(
				"[Graph] triple upsert failed",
				"document", name,
				"page", index,
				"subject", up.Subject,
				"type", up.Predicate,
				"object", up.Object,
				"error", err,
			)
			continue
		}
		written++
	}

	logger.Debug("[Graph] page processed", "document", name, "page", index, "triples", written)

	return written, nil
}

// leadingSample blends the text of the first pages for trust scoring.
func (p *Pipeline) leadingSample(
	ctx context.Context,
	source document.Source,
	pages int,
) string {
	sample := min(pages, trustSamplePages)

	var builder strings.Builder
	for index := 1; index <= sample; index++ {
		page, err := source.Page(ctx, index)
		if err != nil {
			logger.Warn("[Graph] failed to sample page for trust", "page", index, "error", err)
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(page.Text)
	}

	return builder.String()
}
