package main

import (
	"os"

	"viewscope/internal/logger"
)

var log = logger.Named("cli")

func main() {
	logger.Configure()

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "run":
			runMain(root, rest[1:])
			return
		case "tree":
			treeMain(root, rest[1:])
			return
		case "config":
			configMain(root, rest[1:])
			return
		}
	}
	runMain(root, rest)
}
