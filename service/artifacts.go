package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"go.vocdoni.io/dvote/log"
	"golang.org/x/sync/errgroup"

	"github.com/proofoflove/zktier/circuits"
	"github.com/proofoflove/zktier/circuits/wealthtier"
)

// Artifact file names inside the artifacts directory. The three files are
// produced by the same compilation and must be replaced together.
const (
	ConstraintSystemFile = "tier.ccs"
	ProvingKeyFile       = "tier.pk"
	VerifyingKeyFile     = "tier.vk"
)

// EnsureArtifacts loads the circuit artifacts from dir, or compiles the tier
// circuit and runs the Groth16 setup if they are missing, persisting the
// result for the next start.
func EnsureArtifacts(dir string) (constraint.ConstraintSystem, groth16.ProvingKey, groth16.VerifyingKey, error) {
	csPath := filepath.Join(dir, ConstraintSystemFile)
	pkPath := filepath.Join(dir, ProvingKeyFile)
	vkPath := filepath.Join(dir, VerifyingKeyFile)

	if artifactsExist(csPath, pkPath, vkPath) {
		var (
			cs  constraint.ConstraintSystem
			pk  groth16.ProvingKey
			vk  groth16.VerifyingKey
			g   errgroup.Group
			err error
		)
		startTime := time.Now()
		g.Go(func() error {
			var err error
			cs, err = circuits.LoadConstraintSystem(csPath)
			return err
		})
		g.Go(func() error {
			var err error
			pk, err = circuits.LoadProvingKey(pkPath)
			return err
		})
		g.Go(func() error {
			var err error
			vk, err = circuits.LoadVerifyingKey(vkPath)
			return err
		})
		if err = g.Wait(); err != nil {
			return nil, nil, nil, fmt.Errorf("could not load circuit artifacts from %s: %w", dir, err)
		}
		log.Infow("circuit artifacts loaded", "dir", dir, "took", time.Since(startTime).String())
		return cs, pk, vk, nil
	}

	log.Infow("circuit artifacts missing, compiling", "dir", dir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, nil, nil, err
	}
	startTime := time.Now()
	cs, err := wealthtier.Compile()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not compile tier circuit: %w", err)
	}
	pk, vk, err := wealthtier.Setup(cs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not run groth16 setup: %w", err)
	}
	if err := circuits.StoreConstraintSystem(cs, csPath); err != nil {
		return nil, nil, nil, err
	}
	if err := circuits.StoreProvingKey(pk, pkPath); err != nil {
		return nil, nil, nil, err
	}
	if err := circuits.StoreVerificationKey(vk, vkPath); err != nil {
		return nil, nil, nil, err
	}
	log.Infow("circuit artifacts compiled and stored", "dir", dir, "took", time.Since(startTime).String())
	return cs, pk, vk, nil
}

func artifactsExist(paths ...string) bool {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}
