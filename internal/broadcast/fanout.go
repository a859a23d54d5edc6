package broadcast

import "context"

// Fanout publishes to every configured publisher. Errors from
// individual publishers do not stop the others; the first error is
// returned for logging.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, topic string, payload any) error {
	var first error
	for _, p := range f {
		if err := p.Publish(ctx, topic, payload); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Noop discards every event. Used in tests and when no transport is
// configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
