package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const pdfToolTimeout = 30 * time.Second

var pdfInfoPages = regexp.MustCompile(`(?m)^Pages:\s+(\d+)`)

// PDF is a paged document backed by a PDF file on disk. Text is extracted
// with pdftotext and embedded figures with pdfimages, both from poppler.
type PDF struct {
	path string
	name string

	pages int
}

// OpenPDF verifies the poppler tooling is available and reads the page
// count of the PDF at path.
func OpenPDF(path string) (*PDF, error) {
	for _, bin := range []string{"pdfinfo", "pdftotext", "pdfimages"} {
		if _, err := exec.LookPath(bin); err != nil {
			return nil, fmt.Errorf("%s not found in PATH: %w", bin, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), pdfToolTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "pdfinfo", path).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdfinfo failed: %w: %s", err, bytes.TrimSpace(out))
	}

	m := pdfInfoPages.FindSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("pdfinfo output has no page count for %s", path)
	}
	pages, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page count: %w", err)
	}

	return &PDF{
		path:  path,
		name:  filepath.Base(path),
		pages: pages,
	}, nil
}

func (p *PDF) Name() string {
	return p.name
}

func (p *PDF) NumPages(ctx context.Context) (int, error) {
	return p.pages, nil
}

func (p *PDF) Page(ctx context.Context, index int) (Page, error) {
	if index < 1 || index > p.pages {
		return Page{}, fmt.Errorf("page index %d out of range [1, %d]", index, p.pages)
	}

	text, err := p.pageText(ctx, index)
	if err != nil {
		return Page{}, err
	}

	images, err := p.pageImages(ctx, index)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Index:  index,
		Text:   text,
		Images: images,
	}, nil
}

func (p *PDF) pageText(ctx context.Context, index int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pdfToolTimeout)
	defer cancel()

	page := strconv.Itoa(index)
	cmd := exec.CommandContext(
		ctx,
		"pdftotext",
		"-f", page,
		"-l", page,
		"-enc", "UTF-8",
		"-eol", "unix",
		"-nopgbrk",
		"-q",
		p.path,
		"-",
	)
	cmd.Env = append(os.Environ(), "LANG=C.UTF-8", "LC_ALL=C.UTF-8")

	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("pdftotext timed out on page %d", index)
	}
	if err != nil {
		return "", fmt.Errorf("pdftotext failed on page %d: %w: %s", index, err, bytes.TrimSpace(out))
	}

	return strings.TrimSpace(string(out)), nil
}

func (p *PDF) pageImages(ctx context.Context, index int) ([]Image, error) {
	tmpDir, err := os.MkdirTemp("", "pdfimages-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	ctx, cancel := context.WithTimeout(ctx, pdfToolTimeout)
	defer cancel()

	page := strconv.Itoa(index)
	prefix := filepath.Join(tmpDir, "fig")
	cmd := exec.CommandContext(
		ctx,
		"pdfimages",
		"-f", page,
		"-l", page,
		"-png",
		"-q",
		p.path,
		prefix,
	)

	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("pdfimages timed out on page %d", index)
	}
	if err != nil {
		return nil, fmt.Errorf("pdfimages failed on page %d: %w: %s", index, err, bytes.TrimSpace(out))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list extracted images: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".png") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	images := make([]Image, 0, len(names))
	for i, name := range names {
		data, err := os.ReadFile(filepath.Join(tmpDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read extracted image %s: %w", name, err)
		}
		img, err := decodeImage(data, i+1)
		if err != nil {
			// pdfimages occasionally emits masks that fail decoding
			continue
		}
		images = append(images, img)
	}

	return images, nil
}
