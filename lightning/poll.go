package lightning

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
)

// newPollBackOff is a constant interval backoff that stops once timeout elapsed
func newPollBackOff(ctx context.Context, interval, timeout time.Duration) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.MaxInterval = interval
	b.Multiplier = 1
	b.RandomizationFactor = 0
	b.MaxElapsedTime = timeout
	b.Reset()

	return backoff.WithContext(b, ctx)
}

// pollSettings are the interval and deadline of one poll
type pollSettings struct {
	interval time.Duration
	timeout  time.Duration
}

// withDefaults replaces non-positive values with the ones from def
func (p pollSettings) withDefaults(def pollSettings) pollSettings {
	if p.interval <= 0 {
		p.interval = def.interval
	}
	if p.timeout <= 0 {
		p.timeout = def.timeout
	}

	return p
}

var (
	onlinePoll  = pollSettings{interval: DefaultOnlineInterval, timeout: DefaultOnlineTimeout}
	paymentPoll = pollSettings{interval: DefaultPaymentPollInterval, timeout: DefaultPaymentTimeout}
)

// poll invokes op until it succeeds, returns a permanent error or the deadline is reached.
// On exhaustion the error of the last attempt is returned as is.
// Settings that are not positive are taken from def.
func poll(ctx context.Context, what string, settings, def pollSettings, op backoff.Operation) error {
	settings = settings.withDefaults(def)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		return op()
	}, newPollBackOff(ctx, settings.interval, settings.timeout), func(e error, d time.Duration) {
		glog.V(2).Infof("%s attempt %d: %v, next in %v", what, attempt, e, d)
	})
}
