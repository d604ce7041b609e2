// Command seed loads project and item fixtures into the collector's
// PostgreSQL storage. Projects and items are administered out of band;
// this is the out-of-band part.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/banbrick/collector/internal/coerce"
	"github.com/banbrick/collector/internal/repository"
	"github.com/banbrick/collector/internal/validation"
)

func main() {
	dsn := flag.String("d", "", "database dsn")
	fixtureFile := flag.String("f", "./fixtures.json", "path to fixture file")
	flag.Parse()

	if envDSN := os.Getenv("DATABASE_DSN"); envDSN != "" {
		*dsn = envDSN
	}
	if *dsn == "" {
		log.Fatal("database dsn is required")
	}

	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	rules := validation.NewRules(validation.SafetyString())
	storage, err := repository.NewDBStorage(*dsn, rules)
	if err != nil {
		logger.Fatalf("error opening storage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()
	fixer := coerce.NewFixer(logger)
	projects, err := repository.LoadFixtures(ctx, storage, *fixtureFile, fixer, logger)
	if err != nil {
		logger.Fatalf("error loading fixtures: %v", err)
	}
	for name, id := range projects {
		items, err := storage.ListItems(ctx, id)
		if err != nil {
			logger.Fatalf("error listing items of %s: %v", name, err)
		}
		logger.Infof("project %s: %d item(s)", name, len(items))
	}
}
