// Copyright 2025 Poiesic Systems
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
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/precedent"
	"github.com/poiesic/precedent/ai"
	"github.com/poiesic/precedent/core"
	"github.com/poiesic/precedent/retrieve"
	"github.com/urfave/cli/v2"
)

const dateLayout = "2006-01-02"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	embeddingFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "embedding-token",
			Usage: "Embedding service API token (optional for local services)",
		},
	}

	dbFlag := &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}

	return &cli.App{
		Name:  "precedent",
		Usage: "Search historical planning decisions by semantic similarity",
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
				Name:   "ingest",
				Usage:  "Ingest a planning decision document",
				Action: ingestCommand,
				Flags: append([]cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Document identifier, e.g. the application reference",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the decision text file, or - for stdin",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "ward",
						Usage: "Ward the application site falls in",
					},
					&cli.StringFlag{
						Name:  "outcome",
						Usage: "Decision outcome (Granted, Refused, Withdrawn, Pending, ...)",
					},
					&cli.StringFlag{
						Name:  "development-type",
						Usage: "Development type label (Rear Extension, Loft Conversion, ...)",
					},
					&cli.StringFlag{
						Name:  "decision-date",
						Usage: "Decision date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "conservation-area",
						Usage: "Conservation area designation, if any",
					},
				}, embeddingFlags...),
			},
			{
				Name:   "search",
				Usage:  "Search for precedents matching a proposal description",
				Action: searchCommand,
				Flags: append([]cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Natural-language description of the proposed development",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of matching documents",
						Value: retrieve.DefaultLimit,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Similarity floor in [0,1]; pass a negative value to disable",
						Value: retrieve.DefaultMinSimilarity,
					},
					&cli.BoolFlag{
						Name:  "include-refused",
						Usage: "Include refused decisions in the results",
					},
					&cli.StringSliceFlag{
						Name:  "ward",
						Usage: "Restrict to these wards (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "development-type",
						Usage: "Restrict to these development types (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "conservation-area",
						Usage: "Restrict to these conservation areas (repeatable)",
					},
					&cli.StringFlag{
						Name:  "decided-after",
						Usage: "Only decisions on or after this date (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "decided-before",
						Usage: "Only decisions on or before this date (YYYY-MM-DD)",
					},
				}, embeddingFlags...),
			},
			{
				Name:   "similar",
				Usage:  "Find precedents similar to a stored document",
				Action: similarCommand,
				Flags: append([]cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Document identifier to match against",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of matching documents",
						Value: retrieve.DefaultLimit,
					},
				}, embeddingFlags...),
			},
			{
				Name:   "delete",
				Usage:  "Delete a document, its chunks, and its index entries",
				Action: deleteCommand,
				Flags: append([]cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Document identifier to delete",
						Required: true,
					},
				}, embeddingFlags...),
			},
			{
				Name:   "stats",
				Usage:  "Show document and chunk counts",
				Action: statsCommand,
				Flags:  append([]cli.Flag{dbFlag}, embeddingFlags...),
			},
		},
	}
}

func openEngine(c *cli.Context) (*precedent.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithToken(c.String("embedding-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, err
	}

	engine, err := precedent.New(c.String("db"), precedent.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return engine, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	metadata, err := parseMetadata(c)
	if err != nil {
		return err
	}

	text, err := readDocumentText(c.String("file"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	result, err := pipeline.Ingest(ctx, c.String("id"), text, metadata)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Ingested %s: %d chunks, %d embedded\n",
		result.DocumentID, result.Chunks, result.Embedded)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	filters, err := parseFilters(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	retriever, err := engine.NewRetriever()
	if err != nil {
		return err
	}

	matches, err := retriever.Search(ctx, retrieve.Query{
		Text:           c.String("query"),
		Filters:        filters,
		Limit:          c.Int("limit"),
		MinSimilarity:  float32(c.Float64("min-similarity")),
		IncludeRefused: c.Bool("include-refused"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printMatches(matches)
	return nil
}

func similarCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	retriever, err := engine.NewRetriever()
	if err != nil {
		return err
	}

	matches, err := retriever.SimilarToDocument(ctx, c.String("id"), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("similarity search failed: %w", err)
	}

	printMatches(matches)
	return nil
}

func deleteCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	id := c.String("id")
	if err := pipeline.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Printf("Deleted %s\n", id)
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats, err := engine.DocumentRepository().Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Documents:       %d\n", stats.Documents)
	fmt.Printf("Chunks:          %d\n", stats.Chunks)
	fmt.Printf("Embedded chunks: %d\n", stats.EmbeddedChunks)
	return nil
}

func readDocumentText(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func parseMetadata(c *cli.Context) (core.DocumentMetadata, error) {
	metadata := core.DocumentMetadata{
		Ward:             c.String("ward"),
		ConservationArea: c.String("conservation-area"),
	}

	if label := c.String("outcome"); label != "" {
		outcome := core.ParseOutcome(label)
		if outcome == core.OutcomeUnspecified {
			return metadata, fmt.Errorf("unknown outcome %q", label)
		}
		metadata.Outcome = outcome
	}

	if label := c.String("development-type"); label != "" {
		devType := core.ParseDevelopmentType(label)
		if devType == core.DevelopmentUnspecified {
			return metadata, fmt.Errorf("unknown development type %q", label)
		}
		metadata.DevelopmentType = devType
	}

	if value := c.String("decision-date"); value != "" {
		date, err := time.Parse(dateLayout, value)
		if err != nil {
			return metadata, fmt.Errorf("invalid decision-date %q: expected YYYY-MM-DD", value)
		}
		metadata.DecisionDate = date
	}

	return metadata, nil
}

func parseFilters(c *cli.Context) (core.Filters, error) {
	filters := core.Filters{
		Wards:             c.StringSlice("ward"),
		ConservationAreas: c.StringSlice("conservation-area"),
	}

	for _, label := range c.StringSlice("development-type") {
		devType := core.ParseDevelopmentType(label)
		if devType == core.DevelopmentUnspecified {
			return filters, fmt.Errorf("unknown development type %q", label)
		}
		filters.DevelopmentTypes = append(filters.DevelopmentTypes, devType)
	}

	if value := c.String("decided-after"); value != "" {
		date, err := time.Parse(dateLayout, value)
		if err != nil {
			return filters, fmt.Errorf("invalid decided-after %q: expected YYYY-MM-DD", value)
		}
		filters.DateFrom = date
	}

	if value := c.String("decided-before"); value != "" {
		date, err := time.Parse(dateLayout, value)
		if err != nil {
			return filters, fmt.Errorf("invalid decided-before %q: expected YYYY-MM-DD", value)
		}
		filters.DateTo = date
	}

	return filters, nil
}

func printMatches(matches []*core.Match) {
	if len(matches) == 0 {
		fmt.Println("No matching precedents found.")
		return
	}

	for i, match := range matches {
		md := match.Document.Metadata
		fmt.Printf("%d. %s (similarity %.3f)\n", i+1, match.Document.ID, match.Score)

		var details []string
		if md.Ward != "" {
			details = append(details, md.Ward)
		}
		if md.Outcome != core.OutcomeUnspecified {
			details = append(details, md.Outcome.String())
		}
		if md.DevelopmentType != core.DevelopmentUnspecified {
			details = append(details, md.DevelopmentType.String())
		}
		if !md.DecisionDate.IsZero() {
			details = append(details, md.DecisionDate.Format(dateLayout))
		}
		if len(details) > 0 {
			fmt.Printf("   %s\n", strings.Join(details, " | "))
		}

		if len(match.KeyPolicies) > 0 {
			fmt.Printf("   Policies: %s\n", strings.Join(match.KeyPolicies, ", "))
		}
		fmt.Printf("   %s\n\n", match.Excerpt)
	}
}

func setupLogger(c *cli.Context) error {
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
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
