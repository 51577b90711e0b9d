package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rag-chat-be/internal/bootstrap"
	"rag-chat-be/internal/config"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/database"
	"rag-chat-be/pkg/utils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const defaultSourcePath = "data/source.csv"

// resolveSourcePath picks the explicit argument, then DATA_PATH, then the bundled dataset.
func resolveSourcePath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if p := os.Getenv("DATA_PATH"); p != "" {
		return p
	}
	return defaultSourcePath
}

func newRootCmd() *cobra.Command {
	var chunkWords int

	root := &cobra.Command{
		Use:   "ingest [path]",
		Short: "Chunk, embed and store a document source",
		Long: `Reads a csv, tsv, pdf or plain text file, splits every document into
word windows, embeds them and appends the chunks to the vector store.

Examples:
  # Ingest the default dataset
  ingest

  # Ingest a PDF with smaller chunks
  ingest manual.pdf --chunk-words 256`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("chunk-words") {
				cfg.Rag.ChunkWords = chunkWords
			}
			return runIngest(cmd.Context(), cfg, resolveSourcePath(args))
		},
	}
	root.Flags().IntVar(&chunkWords, "chunk-words", utils.DefaultChunkWords, "maximum words per chunk")
	root.AddCommand(newWatchEventsCmd())
	return root
}

func runIngest(ctx context.Context, cfg *config.Config, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		color.Red("✗ Invalid configuration: %v", err)
		return err
	}

	sysLogger := logger.NewConsoleLogger()
	defer sysLogger.Sync()

	var db *gorm.DB
	if cfg.Database.StorageDriver == config.StorageDriverPostgres {
		conn, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
		if err != nil {
			color.Red("✗ Unable to connect to database: %v", err)
			return err
		}
		db = conn
	}

	container, err := bootstrap.NewContainer(db, cfg, sysLogger, nil, bootstrap.WithSynchronousEvents())
	if err != nil {
		color.Red("✗ %v", err)
		return err
	}
	defer container.Close()

	color.Cyan("→ Ingesting %s (%d words per chunk)", path, cfg.Rag.ChunkWords)
	start := time.Now()

	written, err := ingestAndRelay(ctx, container, path)
	if err != nil {
		color.Red("✗ Ingestion failed: %v", err)
		return err
	}

	total, err := container.ChunkRepository.Count(ctx)
	if err != nil {
		color.Yellow("! Stored %d chunks but could not count the store: %v", written, err)
		return nil
	}

	color.Green("✓ Stored %d chunks in %s (%d in store)", written, time.Since(start).Round(time.Millisecond), total)
	return nil
}

// ingestAndRelay starts the event relay, when NATS is configured, before ingesting,
// so the completion event reaches the broker before the process exits.
func ingestAndRelay(ctx context.Context, c *bootstrap.Container, path string) (int, error) {
	if c.EventRelayService != nil {
		if err := c.EventRelayService.Start(ctx); err != nil {
			color.Yellow("! Events will not be relayed: %v", err)
		}
	}
	return c.IngestionService.IngestFile(ctx, path)
}

func printEvent(eventType string, occurredAt time.Time, payload map[string]interface{}) {
	fmt.Printf("%s %s %v\n",
		color.New(color.Faint).Sprint(occurredAt.Format(time.RFC3339)),
		color.New(color.FgCyan, color.Bold).Sprint(eventType),
		payload,
	)
}
