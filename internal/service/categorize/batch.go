package categorize

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"transmittal/internal/domain/models"
)

// BatchOutcome is the result of one categorization request.
type BatchOutcome struct {
	Index int
	Items []models.TransmittalItem
	Err   error
}

// chunk splits files into consecutive batches of at most size entries.
func chunk(files []models.DriveFile, size int) [][]models.DriveFile {
	if size <= 0 {
		size = 1
	}
	batches := make([][]models.DriveFile, 0, (len(files)+size-1)/size)
	for start := 0; start < len(files); start += size {
		end := min(start+size, len(files))
		batches = append(batches, files[start:end])
	}
	return batches
}

// runAll executes fn once per batch concurrently and waits for every call.
// A failing batch never cancels the others. Outcomes are in completion order.
func runAll(ctx context.Context, batches [][]models.DriveFile, fn func(ctx context.Context, index int, batch []models.DriveFile) ([]models.TransmittalItem, error)) []BatchOutcome {
	var (
		mu       sync.Mutex
		outcomes = make([]BatchOutcome, 0, len(batches))
		g        errgroup.Group
	)

	for i, batch := range batches {
		g.Go(func() error {
			var outcome BatchOutcome
			if err := ctx.Err(); err != nil {
				outcome = BatchOutcome{Index: i, Err: err}
			} else {
				items, err := fn(ctx, i, batch)
				outcome = BatchOutcome{Index: i, Items: items, Err: err}
			}

			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}
