package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestPlainFormatter_ComponentAndFieldOrdering(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	cases := []struct {
		name    string
		data    logrus.Fields
		message string
		want    string
	}{
		{
			name: "component with fields",
			data: logrus.Fields{
				"component": "popup",
				"caller":    "x.go:1",
				"value":     "sticky",
				"option":    "hoverPin",
			},
			message: "bad hover pin mode",
			want:    "x.go:1 [2025-01-02T03:04:05Z] [INFO] [popup] bad hover pin mode option=hoverPin value=sticky\n",
		},
		{
			name: "no component",
			data: logrus.Fields{
				"caller": "x.go:1",
				"foo":    "bar",
			},
			message: "hello",
			want:    "x.go:1 [2025-01-02T03:04:05Z] [INFO] hello foo=bar\n",
		},
		{
			name:    "bare message",
			data:    logrus.Fields{},
			message: "hello",
			want:    "[2025-01-02T03:04:05Z] [INFO] hello\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := &logrus.Entry{
				Logger:  logrus.New(),
				Time:    ts,
				Level:   logrus.InfoLevel,
				Message: tc.message,
				Data:    tc.data,
			}
			out, err := (PlainFormatter{}).Format(entry)
			if err != nil {
				t.Fatalf("Format() error: %v", err)
			}
			if got := string(out); got != tc.want {
				t.Fatalf("unexpected format:\nwant: %q\ngot:  %q", tc.want, got)
			}
		})
	}
}

func TestNamedAddsComponent(t *testing.T) {
	l := logrus.New()
	buf := &bytes.Buffer{}
	l.SetOutput(buf)
	l.SetFormatter(PlainFormatter{})
	SetRoot(l)
	defer SetRoot(nil)

	Named("inspector").Info("activated")
	if !strings.Contains(buf.String(), "[inspector] activated") {
		t.Fatalf("expected component prefix, got %q", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	l := logrus.New()
	SetRoot(l)
	defer SetRoot(nil)

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel(debug): %v", err)
	}
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %s, want debug", l.GetLevel())
	}
	if err := SetLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("unknown level should fall back to info, got %s", l.GetLevel())
	}
}

func TestSetupFileRedirectsRoot(t *testing.T) {
	l := logrus.New()
	l.SetFormatter(PlainFormatter{})
	SetRoot(l)
	defer SetRoot(nil)

	path := filepath.Join(t.TempDir(), "nested", "viewscope.log")
	closer, resolved, err := SetupFile(path)
	if err != nil {
		t.Fatalf("SetupFile: %v", err)
	}
	Named("layoutfile").Info("reloaded")
	closer.Close()
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[layoutfile] reloaded") {
		t.Fatalf("log file missing entry: %q", string(data))
	}
}

func TestTrimModulePath(t *testing.T) {
	cases := map[string]string{
		"/home/u/src/viewscope/internal/popup/popup.go": "internal/popup/popup.go",
		"/home/u/src/viewscope/cmd/viewscope/run.go":    "cmd/viewscope/run.go",
		"/usr/lib/go/src/runtime/proc.go":               "proc.go",
	}
	for in, want := range cases {
		if got := trimModulePath(in); got != want {
			t.Fatalf("trimModulePath(%q) = %q, want %q", in, got, want)
		}
	}
}
