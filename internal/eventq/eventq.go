// Package eventq provides non-blocking channel helpers.
package eventq

import "context"

// Offer performs a non-blocking send.
// It returns false when the channel is full or closed.
func Offer[T any](ch chan<- T, value T) (sent bool) {
	defer func() {
		if recover() != nil {
			sent = false
		}
	}()
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}

// OfferContext is Offer that also gives up once ctx is done.
func OfferContext[T any](ctx context.Context, ch chan<- T, value T) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	return Offer(ch, value)
}
