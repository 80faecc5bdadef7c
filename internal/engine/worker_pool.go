package engine

import (
	"errors"
	"sync"

	"github.com/probflow/bayesnet/internal/bn"
)

// rebuildAll runs fn for every node across a fixed set of worker
// goroutines and returns the joined errors. The caller holds the service's
// exclusive lock, so structure is frozen while the pool runs; rebuilds on
// distinct nodes touch disjoint state.
func rebuildAll(workers int, nodes []*bn.Node, fn func(*bn.Node) error) error {
	if workers < 1 {
		workers = 1
	}
	queue := make(chan *bn.Node, len(nodes))
	errc := make(chan error, len(nodes))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range queue {
				if err := fn(n); err != nil {
					errc <- err
				}
			}
		}()
	}

	for _, n := range nodes {
		queue <- n
	}
	close(queue)
	wg.Wait()
	close(errc)

	var errs []error
	for err := range errc {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
