package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kitaphana/kitaphana-backend/internal/db"
	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/search"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

// Recreates every variant index with fresh mappings and re-indexes all records
// from the record store. Run after mapping changes or index loss.
// With -mappings-only the indices are recreated empty and no documents are
// written; the running service's synchronizer fills them back over time.
func main() {
	mappingsOnly := flag.Bool("mappings-only", false, "recreate indices with fresh mappings without re-indexing documents")
	flag.Parse()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	searchClient, err := search.NewESClient(log)
	if err != nil {
		log.Error("Search client init failed", "error", err)
		os.Exit(1)
	}
	ctx := context.Background()

	if *mappingsOnly {
		for _, contentType := range types.AllContentTypes() {
			if err := searchClient.RecreateIndex(ctx, contentType.IndexName(), search.IndexMapping()); err != nil {
				log.Error("Recreate index failed", "index", contentType.IndexName(), "error", err)
				os.Exit(1)
			}
		}
		log.Info("Indices recreated with fresh mappings")
		return
	}

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}

	contentRepo := repos.NewContentRepo(postgresService.DB(), log)
	indexer := search.NewIndexer(log, searchClient, contentRepo)

	log.Info("Starting full reindex...")
	if err := indexer.ReindexAll(ctx); err != nil {
		log.Error("Reindex failed", "error", err)
		os.Exit(1)
	}
	log.Info("Reindex complete")
}
