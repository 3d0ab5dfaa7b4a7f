// Package layoutfile loads the demo layout rendered by the CLI: a view
// config plus its data and context, stored as TOML or YAML.
package layoutfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"viewscope/internal/viewtree"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported layout format")
	ErrNoView            = errors.New("layout has no view")
)

// Layout is one layout file.
type Layout struct {
	Title   string
	View    viewtree.Config
	Data    any
	Context any
	Path    string
}

// Load reads a layout file; the extension picks the format.
func Load(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := Parse(raw, Format(path))
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	l.Path = path
	return l, nil
}

// Format maps a file name to "toml" or "yaml"; other extensions yield "".
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// Parse decodes raw in the given format.
func Parse(raw []byte, format string) (*Layout, error) {
	doc := map[string]any{}
	switch format {
	case "toml":
		if err := toml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
	case "yaml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}

	view, err := viewConfig(doc["view"])
	if err != nil {
		return nil, err
	}
	title, _ := doc["title"].(string)
	return &Layout{
		Title:   title,
		View:    view,
		Data:    doc["data"],
		Context: doc["context"],
	}, nil
}

// viewConfig accepts a view table, a shorthand string or a list of either.
func viewConfig(v any) (viewtree.Config, error) {
	switch x := v.(type) {
	case map[string]any:
		return viewtree.Config(x), nil
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, ErrNoView
		}
		return viewtree.Config{"view": "block", "content": x}, nil
	case []any:
		if len(x) == 0 {
			return nil, ErrNoView
		}
		return viewtree.Config{"view": "block", "content": x}, nil
	case nil:
		return nil, ErrNoView
	default:
		return nil, fmt.Errorf("view must be a table, string or list, got %T", v)
	}
}
