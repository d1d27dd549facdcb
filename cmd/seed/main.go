// Command seed loads a YAML book catalogue into the Firestore books collection.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/firestore"
	"github.com/spf13/pflag"

	"github.com/honari/reading-backend/internal/models"
	"github.com/honari/reading-backend/internal/store"
	"github.com/honari/reading-backend/internal/validation"
	"github.com/honari/reading-backend/pkg/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		filePath string
		project  string
		dryRun   bool
		logLevel string
	)

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVarP(&filePath, "file", "f", "books.yaml", "path to the YAML catalogue")
	flagSet.StringVar(&project, "project", os.Getenv("PROJECTID"), "Google Cloud project id (default $PROJECTID)")
	flagSet.BoolVar(&dryRun, "dry-run", false, "validate the catalogue without writing")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	log := logger.New(logLevel, logger.NewCloudRunHandler)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ToContext(ctx, log)

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening catalogue: %w", err)
	}
	defer f.Close()

	books, err := loadCatalogue(f, validation.New())
	if err != nil {
		return err
	}
	log.Info("catalogue loaded", "file", filePath, "books", len(books))

	if dryRun {
		for _, b := range books {
			log.Debug("would write book", "book_id", b.ID, "title", b.Title, "mood", b.Mood)
		}
		log.Info("dry run, nothing written")
		return nil
	}
	if project == "" {
		return fmt.Errorf("--project or PROJECTID is required")
	}

	return seed(ctx, log, project, books)
}

func seed(ctx context.Context, log *slog.Logger, project string, books []*models.Book) error {
	client, err := firestore.NewClient(ctx, project)
	if err != nil {
		return fmt.Errorf("creating firestore client: %w", err)
	}
	defer client.Close()

	written, err := store.NewBookStore(client).Import(ctx, books)
	log.Info("catalogue imported", "project", project, "written", written, "total", len(books))
	return err
}
