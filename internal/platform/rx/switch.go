package rx

import "context"

// SwitchMap projects every value of in onto an inner stream and forwards only
// the most recent inner stream. When a new value arrives the previous inner
// context is cancelled and nothing it produces afterwards is forwarded.
//
// project must stop sending once its context is done. The returned stream is
// closed when ctx is done, or when in is closed and the last inner stream ends.
func SwitchMap[T, R any](ctx context.Context, in <-chan T, project func(context.Context, T) <-chan R) <-chan R {
	out := make(chan R)

	go func() {
		defer close(out)

		var (
			inner       <-chan R
			cancelInner context.CancelFunc = func() {}
		)
		defer func() { cancelInner() }()

		for {
			select {
			case <-ctx.Done():
				return

			case v, ok := <-in:
				if !ok {
					in = nil
					if inner == nil {
						return
					}
					continue
				}
				cancelInner()
				var innerCtx context.Context
				innerCtx, cancelInner = context.WithCancel(ctx)
				inner = project(innerCtx, v)

			case r, ok := <-inner:
				if !ok {
					inner = nil
					if in == nil {
						return
					}
					continue
				}
				select {
				case out <- r:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Just returns a closed stream holding the given values.
func Just[T any](values ...T) <-chan T {
	ch := make(chan T, len(values))
	for _, v := range values {
		ch <- v
	}
	close(ch)
	return ch
}
