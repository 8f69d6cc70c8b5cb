package recal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

func (p *Processor) worker(ctx context.Context, id int, jobs <-chan job, results chan<- batchResult) error {
	for j := range jobs {
		if p.settings.Verbosity > 2 {
			logger.Info(fmt.Sprintf("Worker %d processing %s chunk %d", id, j.batch.Source, j.batch.Chunk), "workers")
		}
		select {
		case results <- p.safeProcess(j):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *Processor) sendBatchesToWorkers(ctx context.Context, reader HitReader, jobs chan<- job) error {
	defer close(jobs)
	for {
		j, err := p.nextJob(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		select {
		case jobs <- j:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Processor) runWorkers(ctx context.Context, reader HitReader, nWorkers int) error {
	grp, ctx := errgroup.WithContext(ctx)
	jobs := make(chan job, nWorkers)
	results := make(chan batchResult, nWorkers)

	grp.Go(func() error {
		return p.sendBatchesToWorkers(ctx, reader, jobs)
	})

	var wg sync.WaitGroup
	for w := 1; w <= nWorkers; w++ {
		id := w
		wg.Add(1)
		grp.Go(func() error {
			defer wg.Done()
			return p.worker(ctx, id, jobs, results)
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		p.fill(res)
	}
	return grp.Wait()
}
