package service

import (
	"context"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/proofoflove/zktier/prover"
	"github.com/proofoflove/zktier/snapshot"
)

// newTestDB builds the database directly instead of using metadb.NewTest,
// because Stop closes it and pebble panics on a second close.
func newTestDB(t *testing.T) db.Database {
	t.Helper()
	database, err := metadb.New(db.TypePebble, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return database
}

func TestAPIService(t *testing.T) {
	c := qt.New(t)

	apiService := NewAPI(newTestDB(t), t.TempDir(), "127.0.0.1", 0) // Port 0 lets the OS choose an available port

	ctx := context.Background()
	err := apiService.Start(ctx)
	c.Assert(err, qt.IsNil)
	defer apiService.Stop()

	// Test starting an already running service
	err = apiService.Start(ctx)
	c.Assert(err, qt.ErrorMatches, "service already running")

	host, port := apiService.HostPort()
	c.Assert(host, qt.Equals, "127.0.0.1")
	c.Assert(port, qt.Equals, 0)
}

func TestAPIServiceStop(t *testing.T) {
	c := qt.New(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	port := l.Addr().(*net.TCPAddr).Port
	c.Assert(l.Close(), qt.IsNil)

	apiService := NewAPI(newTestDB(t), t.TempDir(), "127.0.0.1", port)
	c.Assert(apiService.Start(context.Background()), qt.IsNil)

	pingURL := fmt.Sprintf("http://127.0.0.1:%d/ping", port)
	for i := 0; ; i++ {
		resp, err := http.Get(pingURL)
		if err == nil {
			c.Assert(resp.Body.Close(), qt.IsNil)
			break
		}
		if i > 100 {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	// after Stop the listener must be gone
	apiService.Stop()
	_, err = http.Get(pingURL)
	c.Assert(err, qt.IsNotNil)
}

// slowProver counts how many Generate calls run at once.
type slowProver struct {
	active  atomic.Int64
	maxSeen atomic.Int64
}

func (s *slowProver) Generate(ctx context.Context, _ snapshot.BalanceTriple,
	_ *big.Int, _ int64,
) (*prover.Result, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	select {
	case <-time.After(20 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &prover.Result{}, nil
}

func TestThrottledProver(t *testing.T) {
	c := qt.New(t)

	backend := &slowProver{}
	throttled := NewThrottledProver(backend, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := throttled.Generate(context.Background(),
				snapshot.BalanceTriple{1, 1, 1}, big.NewInt(1), 1)
			c.Check(err, qt.IsNil)
		}()
	}
	wg.Wait()
	c.Assert(backend.maxSeen.Load() <= 2, qt.IsTrue)

	// a cancelled context gives up the slot wait
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := throttled.Generate(ctx, snapshot.BalanceTriple{1, 1, 1}, big.NewInt(1), 1)
	c.Assert(err, qt.IsNotNil)
}
