package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"viewscope/internal/config"
)

func configMain(root rootArgs, args []string) {
	if err := runConfig(root, args, os.Stdout); err != nil {
		log.Fatalf("config failed: %v", err)
	}
}

// runConfig prints the effective configuration, or writes the default file
// with --init.
func runConfig(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var initFile, force bool
	fs.BoolVar(&initFile, "init", false, "Write the default config file")
	fs.BoolVar(&force, "force", false, "Overwrite an existing file with --init")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if initFile {
		path, err := config.Save(root.cfgPath, config.Default(), force)
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", path)
		return nil
	}

	cfg, err := loadConfig(root, nil)
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# source: %s\n", cfg.Source)
	_, err = out.Write(data)
	return err
}
