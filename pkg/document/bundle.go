package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const manifestName = "manifest.yaml"

// Bundle is a directory-based document: a manifest.yaml describing pages,
// each page pointing at a text file and zero or more figure images inside
// the same directory.
type Bundle struct {
	root     string
	manifest bundleManifest
}

type bundleManifest struct {
	Name  string       `yaml:"name"`
	Pages []bundlePage `yaml:"pages"`
}

type bundlePage struct {
	Text   string   `yaml:"text"`
	Images []string `yaml:"images"`
}

// OpenBundle reads and validates the manifest of a bundle directory.
func OpenBundle(root string) (*Bundle, error) {
	raw, err := os.ReadFile(filepath.Join(root, manifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle manifest: %w", err)
	}

	var manifest bundleManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse bundle manifest: %w", err)
	}

	if len(manifest.Pages) == 0 {
		return nil, fmt.Errorf("bundle %s has no pages", root)
	}

	for i, p := range manifest.Pages {
		if p.Text == "" {
			return nil, fmt.Errorf("bundle page %d has no text file", i+1)
		}
	}

	if manifest.Name == "" {
		manifest.Name = filepath.Base(root)
	}

	return &Bundle{root: root, manifest: manifest}, nil
}

func (b *Bundle) Name() string {
	return b.manifest.Name
}

func (b *Bundle) NumPages(ctx context.Context) (int, error) {
	return len(b.manifest.Pages), nil
}

func (b *Bundle) Page(ctx context.Context, index int) (Page, error) {
	if index < 1 || index > len(b.manifest.Pages) {
		return Page{}, fmt.Errorf("page index %d out of range [1, %d]", index, len(b.manifest.Pages))
	}
	entry := b.manifest.Pages[index-1]

	text, err := b.readEntry(entry.Text)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read page %d text: %w", index, err)
	}

	images := make([]Image, 0, len(entry.Images))
	for i, name := range entry.Images {
		data, err := b.readEntry(name)
		if err != nil {
			return Page{}, fmt.Errorf("failed to read page %d image %s: %w", index, name, err)
		}
		img, err := decodeImage(data, i+1)
		if err != nil {
			return Page{}, fmt.Errorf("failed to decode page %d image %s: %w", index, name, err)
		}
		images = append(images, img)
	}

	return Page{
		Index:  index,
		Text:   string(text),
		Images: images,
	}, nil
}

// readEntry rejects paths that escape the bundle directory.
func (b *Bundle) readEntry(name string) ([]byte, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("manifest entry %q escapes bundle directory", name)
	}
	return os.ReadFile(filepath.Join(b.root, clean))
}
