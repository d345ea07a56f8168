package decoder

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// CollectSequence drains a decoded scalar sequence (typically the output
// of Decoder.UInt64Sequence, SInt64Sequence, BytesSequence, or
// StringSequence) by applying work to every element, using up to
// concurrency goroutines. The core decode path itself stays strictly
// sequential (the wire format has no parallelism to exploit), but work
// done per decoded element — parsing, validating, looking something up —
// often does, the same "fan out over independent units, preserve output
// order" shape as resolving a message's fields concurrently. A
// concurrency of 0 or 1 runs work serially in the calling goroutine.
//
// Results are returned in the same order as elements, regardless of
// completion order. If ctx is cancelled or any call to work returns an
// error, CollectSequence returns the first error encountered and stops
// starting new work.
func CollectSequence[T, R any](ctx context.Context, elements []T, concurrency int, work func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(elements))
	if concurrency <= 1 {
		for i, el := range elements {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := work(ctx, el)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(concurrency)
	for i, el := range elements {
		i, el := i, el
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := work(gctx, el)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
