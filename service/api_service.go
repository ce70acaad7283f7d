// Package service wires the tier proof components into long-running
// services: artifact lifecycle, a concurrency-bounded prover and the HTTP API
// server.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/log"

	"github.com/proofoflove/zktier/api"
	"github.com/proofoflove/zktier/ledger"
	"github.com/proofoflove/zktier/prover"
	"github.com/proofoflove/zktier/verifier"
)

// APIService represents a service that manages the HTTP API server together
// with the circuit artifacts and the credential ledger it depends on.
type APIService struct {
	database     db.Database
	artifactsDir string
	api          *api.API
	mu           sync.Mutex
	cancel       context.CancelFunc
	stopped      chan struct{}
	host         string
	port         int
}

// NewAPI creates a new APIService instance backed by the given database.
func NewAPI(database db.Database, artifactsDir, host string, port int) *APIService {
	return &APIService{
		database:     database,
		artifactsDir: artifactsDir,
		host:         host,
		port:         port,
	}
}

// Start ensures the circuit artifacts, builds the prover, verifier and
// ledger, and begins the API server. It returns an error if the service is
// already running or if it fails to start.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	cs, pk, vk, err := EnsureArtifacts(as.artifactsDir)
	if err != nil {
		return err
	}
	lvk, err := ledger.NewVerifyingKey(vk)
	if err != nil {
		return err
	}
	prg, err := ledger.New(as.database, lvk)
	if err != nil {
		return err
	}

	as.api, err = api.New(&api.APIConfig{
		Host:     as.host,
		Port:     as.port,
		Prover:   NewThrottledProver(prover.NewGeneratorFromSetup(cs, pk), 0),
		Verifier: verifier.NewFromKey(vk),
		Ledger:   prg,
	})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	// cancelling the context (directly or through Stop) shuts the HTTP
	// server down; stopped signals that the listener is gone
	srvCtx, cancel := context.WithCancel(ctx)
	as.cancel = cancel
	as.stopped = make(chan struct{})
	go func(apiSrv *api.API, stopped chan struct{}) {
		<-srvCtx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			log.Warnw("could not shut down API server", "error", err.Error())
		}
		close(stopped)
	}(as.api, as.stopped)
	return nil
}

// Stop halts the API server, waits for the listener to drain and closes the
// backing database.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		as.cancel()
		as.cancel = nil
		<-as.stopped
	}
	if err := as.database.Close(); err != nil {
		log.Warnw("could not close database", "error", err.Error())
	}
}

// HostPort returns the host and port of the API server.
func (as *APIService) HostPort() (string, int) {
	return as.host, as.port
}
