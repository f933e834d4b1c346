package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTextList_CollectsInOrder(t *testing.T) {
	t.Parallel()

	var texts textList

	for _, value := range []string{"first", "second", "third"} {
		err := texts.Set(value)
		if err != nil {
			t.Fatalf("Set(%q) failed: %v", value, err)
		}
	}

	if len(texts) != 3 {
		t.Fatalf("Expected 3 texts, got %d", len(texts))
	}

	if texts[0] != "first" || texts[2] != "third" {
		t.Errorf("Texts out of order: %v", texts)
	}

	if texts.String() != "first, second, third" {
		t.Errorf("Unexpected String(): %q", texts.String())
	}
}

func TestResolveTexts_FromFile(t *testing.T) {
	t.Parallel()

	textsPath := filepath.Join(t.TempDir(), "texts.json")

	err := os.WriteFile(textsPath, []byte(`["one","two"]`), 0o600)
	if err != nil {
		t.Fatalf("Failed to write texts file: %v", err)
	}

	flags := appFlags{
		server:    defaultServer,
		texts:     nil,
		textsFile: textsPath,
		gap:       defaultGap,
		voice:     "",
		outputKey: "",
		timeout:   defaultTimeout,
	}

	texts, err := resolveTexts(flags)
	if err != nil {
		t.Fatalf("resolveTexts failed: %v", err)
	}

	if len(texts) != 2 || texts[0] != "one" {
		t.Errorf("Unexpected texts: %v", texts)
	}
}

func TestResolveTexts_RejectsBothSources(t *testing.T) {
	t.Parallel()

	flags := appFlags{
		server:    defaultServer,
		texts:     textList{"inline"},
		textsFile: "texts.json",
		gap:       defaultGap,
		voice:     "",
		outputKey: "",
		timeout:   defaultTimeout,
	}

	_, err := resolveTexts(flags)
	if err == nil {
		t.Fatal("Expected an error when both --text and --texts are set")
	}
}
