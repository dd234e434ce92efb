// Command pagetree-bench drives a pager.Tree through a YAML-described
// scenario against a real mmap-backed file, logging each step. It exists to
// exercise the library end to end; the library itself never logs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/halvard-eide/pagetree/internal/pager"
)

var (
	flagScenario = flag.String("scenario", "", "Path to a YAML scenario file (required)")
	flagFresh    = flag.Bool("fresh", false, "Delete any existing data file before running")
)

func main() {
	flag.Parse()
	if *flagScenario == "" {
		log.Fatalf("pagetree-bench: -scenario is required")
	}

	runID := uuid.New()
	log.Printf("run %s: loading scenario %s", runID, *flagScenario)

	sc, err := loadScenario(*flagScenario)
	if err != nil {
		log.Fatalf("run %s: %v", runID, err)
	}

	if err := runScenario(runID, sc); err != nil {
		log.Fatalf("run %s: failed: %v", runID, err)
	}
	log.Printf("run %s: done", runID)
}

func runScenario(runID uuid.UUID, sc *Scenario) error {
	if *flagFresh {
		if err := removeIfExists(sc.DataFile); err != nil {
			return fmt.Errorf("remove data file: %w", err)
		}
	}

	store, err := pager.OpenMmapStore(sc.DataFile, int64(sc.PageSize))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	bs := pager.NewByteStore(store)
	alloc := pager.NewSequentialAllocator(sc.PageSize)
	tree, err := pager.NewTree(bs, sc.PageSize, alloc)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}

	log.Printf("run %s: page_size=%d data_file=%s ops=%d", runID, sc.PageSize, sc.DataFile, len(sc.Ops))

	start := time.Now()
	var puts, gets, hits int
	for i, op := range sc.Ops {
		switch op.Kind {
		case "put":
			if err := tree.Put(op.Key, op.Value); err != nil {
				return fmt.Errorf("op %d: put(%d, %d): %w", i, op.Key, op.Value, err)
			}
			puts++
		case "get":
			val, ok, err := tree.Get(op.Key)
			if err != nil {
				return fmt.Errorf("op %d: get(%d): %w", i, op.Key, err)
			}
			gets++
			if ok {
				hits++
				log.Printf("run %s: get(%d) = %d", runID, op.Key, val)
			} else {
				log.Printf("run %s: get(%d) = absent", runID, op.Key)
			}
		}
	}
	elapsed := time.Since(start)

	log.Printf("run %s: puts=%d gets=%d hits=%d size=%d pages=%d max_steps=%d elapsed=%s",
		runID, puts, gets, hits, tree.Size(), tree.PageCount(), tree.MaxStepsSearched(), elapsed)

	if err := tree.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	if sc.Verify {
		count, err := tree.Verify()
		if err != nil {
			var pe *pager.Error
			if errors.As(err, &pe) {
				return fmt.Errorf("verify failed (kind=%v, op=%s): %w", pe.Kind, pe.Op, err)
			}
			return fmt.Errorf("verify: %w", err)
		}
		log.Printf("run %s: verify ok, %d leaf entries", runID, count)
	}

	return nil
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
