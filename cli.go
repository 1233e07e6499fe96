// Copyright 2024 The CXQUERY Authors
//   This file is part of CXQUERY.
//
//  CXQUERY is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  CXQUERY is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with CXQUERY.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"cxquery/cnf"
	"cxquery/corpus"
	"cxquery/export"
	"cxquery/form"
	"cxquery/project"
	"cxquery/store"

	"github.com/rs/zerolog/log"
)

func ingestOptions(conf *cnf.Conf, maxSentences int) corpus.IngestOptions {
	opts := corpus.IngestOptions{MaxSentences: maxSentences}
	if !conf.DisableSubstitutions {
		subst := corpus.DefaultSubstitutions()
		opts.Substitutions = &subst
	}
	return opts
}

// runIngest creates a new project from a corpus file
func runIngest(conf *cnf.Conf, projectName, corpusPath string, maxSentences int) error {
	if projectName == "" || corpusPath == "" {
		return fmt.Errorf("both project name and corpus file must be specified")
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := project.NewRegistry(conf.ProjectsDir)
	if err != nil {
		return err
	}
	defer registry.Close()
	f, err := os.Open(corpusPath)
	if err != nil {
		return fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()
	info, err := registry.Create(
		ctx,
		projectName,
		f,
		project.CreateOptions{
			Policy: conf.StoreCreatePolicy(),
			Ingest: ingestOptions(conf, maxSentences),
		},
	)
	if err != nil {
		return err
	}
	log.Info().
		Str("project", info.Name).
		Str("store", registry.StorePath(info.Name)).
		Msg("project ready")
	return nil
}

// runExport writes the pattern table of a project as CSV
func runExport(conf *cnf.Conf, projectName string, taskID int64, outPath string) error {
	ctx := context.Background()
	registry, err := project.NewRegistry(conf.ProjectsDir)
	if err != nil {
		return err
	}
	defer registry.Close()

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return registry.Use(ctx, projectName, func(s *store.Store) error {
		patterns, err := s.ListPatterns(ctx, store.PatternFilter{TaskID: taskID})
		if err != nil {
			return err
		}
		if err := export.WritePatternsCSV(out, form.NewPatternTable(patterns)); err != nil {
			return err
		}
		log.Info().
			Str("project", projectName).
			Int("numPatterns", len(patterns)).
			Msg("patterns exported")
		return nil
	})
}
