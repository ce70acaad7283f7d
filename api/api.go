// Package api exposes the tier proof system over HTTP: proof generation and
// off-chain verification, the public tier table, and the credential ledger
// endpoints that mirror the on-chain program instructions.
package api

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.vocdoni.io/dvote/log"

	"github.com/proofoflove/zktier/ledger"
	"github.com/proofoflove/zktier/prover"
	"github.com/proofoflove/zktier/snapshot"
	"github.com/proofoflove/zktier/verifier"
)

// ProofGenerator is the proving backend used by the proofs endpoint. Both the
// native gnark generator and the circom one satisfy it.
type ProofGenerator interface {
	Generate(ctx context.Context, balances snapshot.BalanceTriple,
		nullif *big.Int, timestamp int64) (*prover.Result, error)
}

// APIConfig type represents the configuration for the API HTTP server.
type APIConfig struct {
	Host     string
	Port     int
	Prover   ProofGenerator
	Verifier *verifier.Verifier
	Ledger   *ledger.Program
}

// API type represents the API HTTP server.
type API struct {
	router   *chi.Mux
	server   *http.Server
	prover   ProofGenerator
	verifier *verifier.Verifier
	ledger   *ledger.Program
}

// New creates a new API instance with the given configuration and starts the
// HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Prover == nil || conf.Verifier == nil || conf.Ledger == nil {
		return nil, fmt.Errorf("missing prover, verifier or ledger instance")
	}
	a := &API{
		prover:   conf.Prover,
		verifier: conf.Verifier,
		ledger:   conf.Ledger,
	}

	// Initialize router
	a.initRouter()
	a.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Handler: a.router,
	}
	go func() {
		log.Infow("Starting API server", "host", conf.Host, "port", conf.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Shutdown stops the HTTP server, draining in-flight requests until the
// context expires.
func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", TiersEndpoint, "method", "GET")
	a.router.Get(TiersEndpoint, a.tierTable)
	log.Infow("register handler", "endpoint", SnapshotsEndpoint, "method", "GET")
	a.router.Get(SnapshotsEndpoint, a.snapshotSchedule)
	log.Infow("register handler", "endpoint", ProofsEndpoint, "method", "POST")
	a.router.Post(ProofsEndpoint, a.newProof)
	log.Infow("register handler", "endpoint", VerifyEndpoint, "method", "POST")
	a.router.Post(VerifyEndpoint, a.verifyProof)
	log.Infow("register handler", "endpoint", CredentialEndpoint, "method", "GET")
	a.router.Get(CredentialEndpoint, a.credential)
	log.Infow("register handler", "endpoint", CredentialEndpoint, "method", "POST")
	a.router.Post(CredentialEndpoint, a.submitCredential)
	log.Infow("register handler", "endpoint", CredentialEndpoint, "method", "DELETE")
	a.router.Delete(CredentialEndpoint, a.revokeCredential)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	// Register the API handlers
	a.registerHandlers()
}
