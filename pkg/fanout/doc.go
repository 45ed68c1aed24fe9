// Package fanout runs one task per input position and waits for all of them
// to settle.
//
// Results are aggregated positionally: outcome i always belongs to input i,
// whatever order the tasks finish in. A failing or panicking task never
// cancels its siblings; its failure is recorded in its own slot.
//
// Example usage:
//
//	outcomes := fanout.Settle(ctx, len(urls), fanout.Config{}, func(ctx context.Context, i int) (Doc, error) {
//		return fetch(ctx, urls[i])
//	})
//	for i, o := range outcomes {
//		if o.Err != nil {
//			continue // urls[i] failed
//		}
//		use(o.Value)
//	}
//
// With the zero Config every task is started immediately. Width bounds the
// number of tasks in flight and ItemTimeout bounds each one.
package fanout
