package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/neurograph-hq/neurograph/pkg/document"
)

func testImage(width, height, index int) document.Image {
	return document.Image{
		Data:   []byte("image-bytes"),
		MIME:   "image/png",
		Width:  width,
		Height: height,
		Index:  index,
	}
}

func TestFusePageTextOnly(t *testing.T) {
	client := &fakeAIClient{}
	assembler := NewAssembler(client, testPrompts(t))

	fused, err := assembler.FusePage(context.Background(), document.Page{
		Index: 1,
		Text:  "Dopamine modulates reward signaling.",
	})
	if err != nil {
		t.Fatalf("FusePage returned error: %v", err)
	}

	if fused != "TEXT:\nDopamine modulates reward signaling." {
		t.Fatalf("unexpected fused content: %q", fused)
	}
	if client.imageCalls != 0 {
		t.Fatalf("expected no vision calls, got %d", client.imageCalls)
	}
}

func TestFusePageSkipsSmallImages(t *testing.T) {
	client := &fakeAIClient{}
	assembler := NewAssembler(client, testPrompts(t))

	fused, err := assembler.FusePage(context.Background(), document.Page{
		Index: 1,
		Text:  "Some page text.",
		Images: []document.Image{
			testImage(499, 800, 1),
			testImage(800, 499, 2),
			testImage(100, 100, 3),
		},
	})
	if err != nil {
		t.Fatalf("FusePage returned error: %v", err)
	}

	if client.imageCalls != 0 {
		t.Fatalf("expected no vision calls for small images, got %d", client.imageCalls)
	}
	if strings.Contains(fused, "FIGURE DESCRIPTIONS") {
		t.Fatalf("expected no figure section, got %q", fused)
	}
}

func TestFusePageDescribesQualifyingImagesInOrder(t *testing.T) {
	client := &fakeAIClient{
		imageDescriptions: []string{"A bar chart of firing rates.", "A synapse diagram."},
	}
	assembler := NewAssembler(client, testPrompts(t))

	fused, err := assembler.FusePage(context.Background(), document.Page{
		Index: 2,
		Text:  "Raw page text.",
		Images: []document.Image{
			testImage(640, 520, 1),
			testImage(300, 300, 2),
			testImage(1024, 768, 3),
		},
	})
	if err != nil {
		t.Fatalf("FusePage returned error: %v", err)
	}

	if client.imageCalls != 2 {
		t.Fatalf("expected 2 vision calls, got %d", client.imageCalls)
	}

	want := "TEXT:\nRaw page text.\n\nFIGURE DESCRIPTIONS:\n" +
		"[Figure 1]: A bar chart of firing rates.\n" +
		"[Figure 3]: A synapse diagram."
	if fused != want {
		t.Fatalf("unexpected fused content:\n%q\nwant:\n%q", fused, want)
	}
}

func TestFusePageVisionFailureIsBestEffort(t *testing.T) {
	client := &fakeAIClient{imageErr: errModelDown}
	assembler := NewAssembler(client, testPrompts(t))

	fused, err := assembler.FusePage(context.Background(), document.Page{
		Index:  1,
		Text:   "Page text survives.",
		Images: []document.Image{testImage(600, 600, 1)},
	})
	if err != nil {
		t.Fatalf("expected vision failure to be swallowed, got %v", err)
	}

	if !strings.Contains(fused, "Page text survives.") {
		t.Fatalf("expected raw text in fused content: %q", fused)
	}
	if !strings.Contains(fused, "[Figure 1]: ") {
		t.Fatalf("expected empty description placeholder: %q", fused)
	}
}
