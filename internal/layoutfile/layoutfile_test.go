package layoutfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"viewscope/internal/viewtree"
)

const tomlLayout = `
title = "Demo"

[view]
view = "block"
content = ["text:Hello", { view = "list", data = "=items" }]

[data]
items = ["a", "b"]
`

const yamlLayout = `
title: Demo
view:
  view: block
  content:
    - text:Hello
    - view: list
      data: =items
data:
  items: [a, b]
`

func TestParseFormats(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		format string
	}{
		{name: "toml", raw: tomlLayout, format: "toml"},
		{name: "yaml", raw: yamlLayout, format: "yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := Parse([]byte(tc.raw), tc.format)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if l.Title != "Demo" {
				t.Fatalf("title = %q", l.Title)
			}
			if l.View.Name() != "block" {
				t.Fatalf("view name = %q, want block", l.View.Name())
			}
			content, ok := l.View["content"].([]any)
			if !ok || len(content) != 2 || content[0] != "text:Hello" {
				t.Fatalf("unexpected content: %#v", l.View["content"])
			}
			list, ok := content[1].(map[string]any)
			if !ok || list["data"] != "=items" {
				t.Fatalf("unexpected list config: %#v", content[1])
			}
			want := map[string]any{"items": []any{"a", "b"}}
			if diff := cmp.Diff(want, l.Data); diff != "" {
				t.Fatalf("data (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseViewShorthand(t *testing.T) {
	l, err := Parse([]byte(`view = "text:Hi"`), "toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := viewtree.Config{"view": "block", "content": "text:Hi"}
	if diff := cmp.Diff(want, l.View); diff != "" {
		t.Fatalf("view (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`title = "x"`), "toml"); !errors.Is(err, ErrNoView) {
		t.Fatalf("missing view: err = %v, want ErrNoView", err)
	}
	if _, err := Parse([]byte(`{}`), "json"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("json: err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Parse([]byte(`view = 3`), "toml"); err == nil {
		t.Fatalf("numeric view should be rejected")
	}
}

func TestLoadUsesExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yml")
	if err := os.WriteFile(path, []byte(yamlLayout), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Path != path {
		t.Fatalf("path = %q, want %q", l.Path, path)
	}

	bad := filepath.Join(dir, "layout.txt")
	if err := os.WriteFile(bad, []byte(yamlLayout), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(bad); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "layout.toml")
	if err := os.WriteFile(path, []byte(tomlLayout), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	reloaded := make(chan *Layout, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(l *Layout, err error) {
		if err == nil {
			reloaded <- l
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	next := `title = "Changed"
view = "text:Bye"
`
	if err := os.WriteFile(path, []byte(next), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case l := <-reloaded:
		if l.Title != "Changed" {
			t.Fatalf("title = %q, want Changed", l.Title)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no reload after write")
	}
	w.Stop()
}
