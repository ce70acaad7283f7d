package service

import (
	"context"
	"math/big"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/proofoflove/zktier/api"
	"github.com/proofoflove/zktier/prover"
	"github.com/proofoflove/zktier/snapshot"
)

// ThrottledProver bounds the number of concurrent proof generations. Groth16
// proving saturates all cores, so running more provers than CPUs only adds
// memory pressure and latency.
type ThrottledProver struct {
	backend api.ProofGenerator
	sem     *semaphore.Weighted
}

// NewThrottledProver wraps a proving backend with a concurrency limit. A
// limit of 0 means one prover per available CPU.
func NewThrottledProver(backend api.ProofGenerator, limit int64) *ThrottledProver {
	if limit <= 0 {
		limit = int64(runtime.GOMAXPROCS(0))
	}
	return &ThrottledProver{
		backend: backend,
		sem:     semaphore.NewWeighted(limit),
	}
}

// Generate acquires a proving slot and delegates to the backend. It blocks
// until a slot is free or the context is done.
func (t *ThrottledProver) Generate(ctx context.Context, balances snapshot.BalanceTriple,
	nullif *big.Int, timestamp int64,
) (*prover.Result, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)
	return t.backend.Generate(ctx, balances, nullif, timestamp)
}
