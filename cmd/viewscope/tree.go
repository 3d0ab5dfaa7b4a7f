package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"viewscope/internal/host"
	"viewscope/internal/logger"
	"viewscope/internal/surface"
	"viewscope/internal/viewtree"
)

func treeMain(root rootArgs, args []string) {
	if err := runTree(root, args, os.Stdout); err != nil {
		log.Fatalf("tree failed: %v", err)
	}
}

// runTree renders a layout headlessly and prints its visual tree.
func runTree(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var width, height int
	fs.IntVar(&width, "width", 80, "Surface width in cells")
	fs.IntVar(&height, "height", 24, "Surface height in cells")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(root, nil)
	if err != nil {
		return err
	}
	logger.Discard()

	layout, err := resolveLayout(fs.Arg(0), cfg)
	if err != nil {
		return err
	}
	h := host.New(hostOptions(cfg, width, height))
	defer h.Dispose()
	if err := h.Mount("main", layout.View, layout.Data, layout.Context); err != nil {
		return err
	}

	leaves := h.Views.VisualTree([]*surface.Node{h.Content()})
	writeTree(out, leaves, 0)
	return nil
}

func writeTree(out io.Writer, leaves []*viewtree.Leaf, depth int) {
	for _, leaf := range leaves {
		next := depth
		if leaf.Logical() {
			line := strings.Repeat("  ", depth) + leaf.Label()
			switch {
			case leaf.ViewRoot != nil:
				line += " (root)"
			case leaf.View.Skipped:
				line += " (skipped)"
			}
			if leaf.Node != nil {
				r := leaf.Node.AbsRect()
				line += fmt.Sprintf(" @ %d,%d %dx%d", r.Left, r.Top, r.Width, r.Height)
			}
			fmt.Fprintln(out, line)
			next = depth + 1
		}
		writeTree(out, leaf.Children, next)
	}
}
