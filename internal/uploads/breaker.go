package uploads

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"paper-review/internal/shared/telemetry"
)

// ErrCircuitOpen is returned without contacting the service while the breaker is open.
var ErrCircuitOpen = errors.New("analysis service unavailable")

// BreakerSender stops calling the analysis service after repeated transport
// failures. HTTP error statuses are answers, not failures, and never trip it.
type BreakerSender struct {
	next    Sender
	breaker *gobreaker.CircuitBreaker[*Response]
}

// NewBreakerSender wraps next. failures consecutive transport errors open the
// circuit for openFor; failures <= 0 returns next unchanged.
func NewBreakerSender(next Sender, failures int, openFor time.Duration) Sender {
	if failures <= 0 {
		return next
	}
	settings := gobreaker.Settings{
		Name:        "analysis-upload",
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Warn("upload.breaker_state_change", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	}
	return &BreakerSender{next: next, breaker: gobreaker.NewCircuitBreaker[*Response](settings)}
}

// Send forwards to the wrapped sender unless the circuit is open.
func (b *BreakerSender) Send(ctx context.Context, file File, progress ProgressFunc) (*Response, error) {
	resp, err := b.breaker.Execute(func() (*Response, error) {
		return b.next.Send(ctx, file, progress)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrCircuitOpen, err)
	}
	return resp, err
}
