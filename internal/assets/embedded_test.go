package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	t.Run("every listed style loads", func(t *testing.T) {
		t.Parallel()

		for _, name := range loader.Names() {
			css, err := loader.LoadStyle(name)
			if err != nil {
				t.Errorf("LoadStyle(%q) error = %v", name, err)
				continue
			}
			if strings.TrimSpace(css) == "" {
				t.Errorf("LoadStyle(%q) returned empty stylesheet", name)
			}
		}
	})

	t.Run("extension in name rejected", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadStyle("default.css")
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadStyle("")
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestDefaultStyle_StylesExtrasMarkup(t *testing.T) {
	t.Parallel()

	css, err := LoadStyle(DefaultStyleName)
	if err != nil {
		t.Fatalf("LoadStyle() error = %v", err)
	}

	// Classes emitted by the extras stage
	for _, selector := range []string{".highlight", "ul.toc", ".table-description", ".page-break", ".mermaid"} {
		if !strings.Contains(css, selector) {
			t.Errorf("default style has no rule for %s", selector)
		}
	}
}
