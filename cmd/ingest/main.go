package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"fluentpro/internal/app"
	"fluentpro/internal/config"
	"fluentpro/internal/database/migration"
	"fluentpro/internal/database/seeder"
	"fluentpro/internal/ingest"
	"fluentpro/internal/usecase"
	"fluentpro/migrations"
)

func main() {
	urls := flag.String("urls", "", "comma separated catalog URLs (defaults to INGEST_CATALOG_URLS)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall ingest timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	r := migration.Runner{FS: migrations.FS}
	if err := r.Run(migCtx, c.DB.SQLDB()); err != nil {
		migCancel()
		log.Fatalf("migration failed: %v", err)
	}
	if err := seeder.Default().Run(migCtx, c.DB); err != nil {
		migCancel()
		log.Fatalf("seeding failed: %v", err)
	}
	migCancel()

	catalogURLs := cfg.Ingest.CatalogURLs
	if raw := strings.TrimSpace(*urls); raw != "" {
		catalogURLs = catalogURLs[:0]
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				catalogURLs = append(catalogURLs, u)
			}
		}
	}
	if len(catalogURLs) == 0 {
		log.Fatalf("no catalog URLs: set INGEST_CATALOG_URLS or pass -urls")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var indexer usecase.RoleIndexer
	if c.Indexer != nil {
		indexer = c.Indexer
	}

	ing := ingest.NewCatalogIngester(c.Roles, c.Industries, indexer, c.Log)
	if err := ing.Run(ctx, catalogURLs); err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
}
