// Command driftctl is a small operational tool around the sync engine: it
// pushes pending local writes and pulls backend state for one collection,
// either once or continuously on the configured autosync interval.
//
// Configuration comes from DRIFT_* environment variables, optionally merged
// with the JSON file named by DRIFT_CONFIG.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/driftstore/driftstore/internal/client"
	"github.com/driftstore/driftstore/internal/config"
	"github.com/driftstore/driftstore/internal/datastore"
	"github.com/driftstore/driftstore/internal/logger"
	"github.com/driftstore/driftstore/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// document is the untyped record driftctl syncs: just the envelope, no
// domain fields, which is all push/pull need.
type document struct {
	models.DocumentBase
}

func main() {
	printBuildInfo()

	collection := flag.String("collection", "", "collection to synchronize")
	watch := flag.Bool("watch", false, "keep syncing on the configured interval until interrupted")
	flag.Parse()

	log := logger.NewLogger("driftctl")

	if *collection == "" {
		log.Fatal().Msg("-collection is required")
	}

	cfg, err := config.GetClientConfig(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create client")
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			log.Err(closeErr).Msg("close client")
		}
	}()

	docs, err := client.Collection[document](c, *collection, datastore.StoreTypeSync, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("open collection")
	}

	result, err := docs.Sync(ctx, nil)
	if err != nil {
		log.Fatal().Err(err).Str("collection", *collection).Msg("sync failed")
	}
	log.Info().
		Str("collection", *collection).
		Int("pushed", result.PushCount).
		Int("pulled", result.PullCount).
		Int("errors", len(result.Errors)).
		Msg("sync complete")

	if !*watch {
		return
	}

	if err = c.StartAutoSync(ctx, docs); err != nil {
		log.Fatal().Err(err).Msg("start autosync")
	}
	log.Info().Dur("interval", cfg.Sync.Interval).Msg("watching for changes, Ctrl+C to stop")
	<-ctx.Done()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
