// Copyright 2026 The Arcsearch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command indexer is the CLI entrypoint for the SPIMI indexing
// pipeline (§6): it reads a JSON config (file or stdin), walks a
// source directory, and writes a complete index bundle to an output
// directory, optionally incrementally against a prior run.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/arcsearch/spimi/config"
	"github.com/arcsearch/spimi/indexer"
	"github.com/arcsearch/spimi/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "indexer:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("indexer", flag.ExitOnError)
	var (
		configPath             string
		configStdin            bool
		incremental            bool
		incrementalContentHash bool
		preserveOutputFolder   bool
		logLevel               string
	)
	flags.StringVar(&configPath, "c", "", "path to a JSON config file")
	flags.BoolVar(&configStdin, "config-stdin", false, "read the JSON config document from stdin")
	flags.BoolVar(&incremental, "i", false, "run incrementally against the output directory's prior index")
	flags.BoolVar(&incremental, "incremental", false, "run incrementally against the output directory's prior index")
	flags.BoolVar(&incrementalContentHash, "incremental-content-hash", false, "detect changed files by content hash instead of mtime")
	flags.BoolVar(&preserveOutputFolder, "p", false, "do not clear the output directory before a full run")
	flags.BoolVar(&preserveOutputFolder, "preserve-output-folder", false, "do not clear the output directory before a full run")
	flags.StringVar(&logLevel, "log-level", "info", "debug|info|warn|error")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if configPath != "" && configStdin {
		return fmt.Errorf("-c and --config-stdin are mutually exclusive")
	}

	rest := flags.Args()
	if len(rest) != 2 {
		return fmt.Errorf("usage: indexer <source_dir> <output_dir> [-c config.json] [--config-stdin] [-i] [--incremental-content-hash] [-p] [--log-level level]")
	}
	sourceDir, outputDir := rest[0], rest[1]

	switch strings.ToLower(logLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown --log-level %q", logLevel)
	}

	var cfg *config.Config
	var err error
	switch {
	case configStdin:
		cfg, err = config.Load(os.Stdin)
	case configPath != "":
		cfg, err = config.LoadFile(configPath)
	default:
		cfg, err = config.Load(strings.NewReader(`{"preset":"small","fields_config":{"fields":{"body":{"storage":"text","weight":1}}}}`))
	}
	if err != nil {
		return err
	}
	cfg.LogLevel = logLevel

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	return indexer.Run(indexer.RunOptions{
		SourceDir:              sourceDir,
		OutputDir:              outputDir,
		Config:                 cfg,
		Logger:                 logger,
		Incremental:            incremental,
		IncrementalContentHash: incrementalContentHash,
		PreserveOutputFolder:   preserveOutputFolder,
	})
}
