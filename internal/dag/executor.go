package dag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/packforge/packforge/internal/ctxlog"
)

// Executor runs a graph's tasks on a bounded worker pool.
type Executor struct {
	graph      *Graph
	numWorkers int
	wg         sync.WaitGroup
}

// NewExecutor creates an executor for the graph. Worker counts below one are
// clamped to one.
func NewExecutor(graph *Graph, workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{graph: graph, numWorkers: workers}
}

// Run executes the entire graph concurrently and returns an error if any
// node fails. It respects the cancellation signal from the provided context.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	if err := e.graph.DetectCycles(); err != nil {
		return err
	}

	e.graph.mutex.RLock()
	readyChan := make(chan *node, len(e.graph.nodes))
	rootCount := 0
	for _, n := range e.graph.nodes {
		if n.depCount.Load() == 0 {
			readyChan <- n
			rootCount++
		}
	}
	total := len(e.graph.nodes)
	e.graph.mutex.RUnlock()
	logger.Debug("Executor initialized.", "nodes", total, "roots", rootCount, "workers", e.numWorkers)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.wg.Add(total)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)

	// Report the first real failure as the root cause; skipped nodes are
	// symptoms, not causes.
	var failed []string
	var rootCause error
	e.graph.mutex.RLock()
	for _, n := range e.graph.nodes {
		if State(n.state.Load()) != Failed {
			continue
		}
		if n.err != nil && !strings.HasPrefix(n.err.Error(), "skipped") && !errors.Is(n.err, context.Canceled) {
			failed = append(failed, n.id)
			if rootCause == nil {
				rootCause = n.err
			}
		}
	}
	e.graph.mutex.RUnlock()

	if rootCause != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failed, ", "), rootCause)
	}
	return nil
}

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", n.id)

		if ctx.Err() != nil {
			n.skipOnce.Do(func() {
				workerLogger.Warn("Context canceled, skipping node execution.")
				n.state.Store(int32(Failed))
				n.err = ctx.Err()
				e.wg.Done()
			})
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		n.state.Store(int32(Running))

		if err := n.task(ctx); err != nil {
			workerLogger.Error("Node execution failed.", "error", err)
			n.state.Store(int32(Failed))
			n.err = err
			cancel()
			e.skipDependents(ctx, n)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Node execution succeeded.")
		n.state.Store(int32(Done))

		for _, dependent := range n.dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", dependent.id)
				readyChan <- dependent
			}
		}

		e.wg.Done()
	}
}

// skipDependents recursively marks all downstream nodes as failed.
func (e *Executor) skipDependents(ctx context.Context, n *node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.dependents {
		dependent.skipOnce.Do(func() {
			logger.Warn("Skipping dependent node due to upstream failure.",
				"nodeID", dependent.id, "dependency", n.id)
			dependent.state.Store(int32(Failed))
			dependent.err = fmt.Errorf("skipped due to upstream failure of '%s'", n.id)
			e.wg.Done()
			e.skipDependents(ctx, dependent)
		})
	}
}
