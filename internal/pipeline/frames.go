package pipeline

import (
	"context"
	"image"
	"sync"

	"pixelart/internal/logging"
	"pixelart/internal/metrics"
)

type frameJob struct {
	index int
	frame *image.NRGBA
}

type frameResult struct {
	index int
	frame *image.NRGBA
	err   error
}

// mapFrames applies fn to every frame using a worker pool and returns the
// results in source order. The first error cancels the remaining work.
func mapFrames(ctx context.Context, frames []*image.NRGBA, numWorkers int, fn func(*image.NRGBA) (*image.NRGBA, error)) ([]*image.NRGBA, error) {
	if len(frames) == 0 {
		return nil, nil
	}
	if numWorkers > len(frames) {
		numWorkers = len(frames)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	logging.Debug("Mapping %d frames with %d workers", len(frames), numWorkers)
	metrics.FrameWorkers.Set(float64(numWorkers))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan frameJob)
	results := make(chan frameResult, numWorkers)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				out, err := fn(job.frame)
				select {
				case results <- frameResult{index: job.index, frame: out, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, f := range frames {
			select {
			case jobs <- frameJob{index: i, frame: f}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]*image.NRGBA, len(frames))
	received := 0
	for received < len(frames) {
		select {
		case res, ok := <-results:
			if !ok {
				// Workers bailed out after cancellation.
				return nil, ctx.Err()
			}
			if res.err != nil {
				cancel()
				return nil, res.err
			}
			out[res.index] = res.frame
			metrics.FramesProcessed.Inc()
			received++
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}
