package main

import (
	"flag"
	"io"
)

type rootArgs struct {
	overrides []string
	cfgPath   string
}

// parseRootArgs consumes the global flags; parsing stops at the subcommand.
func parseRootArgs(args []string) (rootArgs, []string, error) {
	fs := flag.NewFlagSet("viewscope", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var overrides overrideList
	var cfgPath string
	fs.Var(&overrides, "c", "Override config value key=value (repeatable, applied before subcommand overrides)")
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.viewscope/config.toml)")
	if err := fs.Parse(args); err != nil {
		return rootArgs{}, nil, err
	}
	return rootArgs{overrides: append([]string{}, overrides...), cfgPath: cfgPath}, fs.Args(), nil
}

func prependOverrides(root []string, overrides []string) []string {
	merged := append([]string{}, root...)
	return append(merged, overrides...)
}
