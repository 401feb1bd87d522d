package document

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/neurograph-hq/neurograph/pkg/ai"
)

// Image is a single figure extracted from a document page. Data holds the
// raw encoded bytes (PNG or JPEG), Index is the figure's position on the
// page starting at 1.
type Image struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
	Index  int
}

// Page is one page of a paged document: its raw text plus the figures
// found on it, in page order.
type Page struct {
	Index  int
	Text   string
	Images []Image
}

// Source is a paged document that can be walked page by page. Page indices
// start at 1 and page iteration order is the document's reading order.
type Source interface {
	// Name returns the document's display name, usually the file name.
	Name() string

	// NumPages returns the total number of pages.
	NumPages(ctx context.Context) (int, error)

	// Page loads the page with the given 1-based index.
	Page(ctx context.Context, index int) (Page, error)
}

// Base64 encodes the image for transport to a vision model.
func (i Image) Base64() ai.ImageBase64 {
	return ai.ImageBase64{
		Base64: base64.StdEncoding.EncodeToString(i.Data),
		MIME:   i.MIME,
	}
}

// Open inspects the path and returns the matching Source implementation:
// a directory containing a manifest.yaml becomes a Bundle, a .pdf file
// becomes a PDF.
func Open(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}

	if info.IsDir() {
		manifest := filepath.Join(path, manifestName)
		if _, err := os.Stat(manifest); err != nil {
			return nil, fmt.Errorf("directory %s has no %s: %w", path, manifestName, err)
		}
		return OpenBundle(path)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return OpenPDF(path)
	}

	return nil, fmt.Errorf("unsupported document type: %s", path)
}

func decodeImage(data []byte, index int) (Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode image: %w", err)
	}

	mime := "image/png"
	if format == "jpeg" {
		mime = "image/jpeg"
	}

	return Image{
		Data:   data,
		MIME:   mime,
		Width:  cfg.Width,
		Height: cfg.Height,
		Index:  index,
	}, nil
}
