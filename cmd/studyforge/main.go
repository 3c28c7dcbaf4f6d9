// Copyright 2025 Lucentia Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/lucentia/studyforge"
	"github.com/lucentia/studyforge/api"
	"github.com/lucentia/studyforge/catalog"
	"github.com/lucentia/studyforge/core"
	"github.com/lucentia/studyforge/notes"
)

func main() {
	app := &cli.App{
		Name:  "studyforge",
		Usage: "Turn documents and reference links into structured study notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Process local documents through the pipeline",
				ArgsUsage: "FILE [FILE...]",
				Action:    runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "label",
						Usage: "Project label used for the project directory and summaries",
					},
					&cli.StringFlag{
						Name:  "data-dir",
						Usage: "Base directory for project directories",
						Value: "vault",
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to the BadgerDB export catalog directory (empty disables)",
					},
					&cli.StringFlag{
						Name:  "ollama-host",
						Usage: "Generation service base URL",
						Value: "http://localhost:11434",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Generation model name",
						Value: "llama3.1",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Per-request generation timeout",
						Value: 120 * time.Second,
					},
					&cli.IntFlag{
						Name:  "max-chunk-words",
						Usage: "Soft per-chunk word budget",
						Value: 400,
					},
					&cli.StringSliceFlag{
						Name:  "ref",
						Usage: "Reference URL to capture alongside the sources (repeatable)",
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Serve the job query API on this address while running (empty disables)",
					},
				},
			},
			{
				Name:   "jobs",
				Usage:  "List export records from the catalog",
				Action: jobsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the BadgerDB export catalog directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one input file is required")
	}

	notesConfig := notes.NewConfig(
		notes.WithEndpoint(c.String("ollama-host")),
		notes.WithModel(c.String("model")),
		notes.WithTimeout(c.Duration("timeout")),
	)

	serviceOpts := []studyforge.ServiceOption{
		studyforge.WithNotesConfig(notesConfig),
		studyforge.WithMaxChunkWords(c.Int("max-chunk-words")),
	}
	if dbPath := c.String("db"); dbPath != "" {
		serviceOpts = append(serviceOpts, studyforge.WithCatalogPath(dbPath))
	}

	service, err := studyforge.NewService(serviceOpts...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer service.Close()

	label := c.String("label")
	slug, projectDir, err := studyforge.EnsureProjectDir(c.String("data-dir"), label)
	if err != nil {
		return fmt.Errorf("failed to provision project directory: %w", err)
	}
	slog.Info("project directory provisioned", "slug", slug, "dir", projectDir)

	files, err := saveSources(projectDir, c.Args().Slice())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	var httpServer *http.Server
	if addr := c.String("addr"); addr != "" {
		httpServer = &http.Server{
			Addr:    addr,
			Handler: api.NewServer(service.Registry()).Router(),
		}
		go func() {
			slog.Info("serving job query API", "addr", addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("query API server failed", "err", err)
			}
		}()
	}

	jobID, err := service.Submit(ctx, studyforge.Submission{
		Label:         label,
		ProjectDir:    projectDir,
		Files:         files,
		ReferenceURLs: c.StringSlice("ref"),
	})
	if err != nil {
		return fmt.Errorf("failed to submit job: %w", err)
	}

	record, err := service.Wait(ctx, jobID)
	if err != nil {
		return err
	}
	if err := printJSON(record); err != nil {
		return err
	}

	if httpServer != nil {
		slog.Info("job finished; query API stays up until interrupt")
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
	return nil
}

func jobsCommand(c *cli.Context) error {
	cat, err := catalog.Open(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()

	records, err := cat.List(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list export records: %w", err)
	}
	return printJSON(records)
}

// saveSources copies the input files into the project's source directory so
// the project stays self-contained, the way uploads are persisted.
func saveSources(projectDir string, inputs []string) ([]core.SourceFile, error) {
	sourceDir := filepath.Join(projectDir, "source")
	files := make([]core.SourceFile, 0, len(inputs))

	for _, input := range inputs {
		name := filepath.Base(input)
		destination := filepath.Join(sourceDir, name)

		src, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input %s: %w", input, err)
		}

		dst, err := os.Create(destination)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("failed to save input %s: %w", input, err)
		}

		_, err = io.Copy(dst, src)
		src.Close()
		if closeErr := dst.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save input %s: %w", input, err)
		}

		files = append(files, core.SourceFile{Name: name, Path: destination})
	}
	return files, nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", levelStr)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}
