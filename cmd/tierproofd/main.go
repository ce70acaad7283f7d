// tierproofd runs the tier proof service: the HTTP API for proof generation
// and verification backed by the credential ledger.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
	"go.vocdoni.io/dvote/log"

	"github.com/proofoflove/zktier/config"
	"github.com/proofoflove/zktier/service"
)

func main() {
	cfg := config.New()
	flag.StringVar(&cfg.Host, "host", cfg.Host, "API listen address")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "API listen port")
	flag.StringVar(&cfg.DataDir, "dataDir", cfg.DataDir, "data directory for the credential ledger database")
	flag.StringVar(&cfg.ArtifactsDir, "artifactsDir", cfg.ArtifactsDir, "directory for the circuit artifacts (default: <dataDir>/artifacts)")
	flag.StringVar(&cfg.LogLevel, "logLevel", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	log.Init(cfg.LogLevel, "stdout", nil)

	database, err := metadb.New(db.TypePebble, cfg.DataDir)
	if err != nil {
		log.Fatalf("could not open database at %s: %v", cfg.DataDir, err)
	}

	srv := service.NewAPI(database, cfg.Artifacts(), cfg.Host, cfg.Port)
	if err := srv.Start(context.Background()); err != nil {
		log.Fatalf("could not start the tier proof service: %v", err)
	}
	log.Infow("tierproofd started", "host", cfg.Host, "port", cfg.Port, "dataDir", cfg.DataDir)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
	srv.Stop()
}
