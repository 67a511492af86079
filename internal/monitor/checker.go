// Package monitor runs the poll loop: look up the public IP, compare it with
// the stored one, persist and notify on change.
package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ipwatch/internal/config"
	"github.com/ipwatch/internal/document"
	"github.com/ipwatch/internal/ipcheck"
	"github.com/ipwatch/internal/logging"
	"github.com/ipwatch/internal/models"
	"github.com/ipwatch/internal/notify"
)

// Store is the document store as seen by the loop.
type Store interface {
	Load() (document.Value, error)
	SetKey(key string, value document.Value) error
}

// Recorder keeps a log of changes. It is optional.
type Recorder interface {
	Record(oldIP, newIP string, notifyErr error) (*models.IPChange, error)
}

type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeChanged
	OutcomeFetchFailed
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeChanged:
		return "changed"
	case OutcomeFetchFailed:
		return "fetch failed"
	default:
		return "unknown"
	}
}

// Result describes one iteration.
type Result struct {
	Outcome    Outcome
	IP         string
	PreviousIP string
	// Failures is the consecutive lookup failure count after this iteration.
	Failures uint64
	// Alerted is set when the failure threshold was reached this iteration.
	Alerted   bool
	FetchErr  error
	NotifyErr error
	// Interval is how long to wait before the next iteration.
	Interval time.Duration
}

// Checker is the poll loop. It keeps no state between iterations; everything
// it remembers lives in the document.
type Checker struct {
	store    Store
	fetcher  ipcheck.Fetcher
	notifier notify.Notifier
	history  Recorder
	logger   *log.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

type Option func(*Checker)

// WithHistory records every change in r.
func WithHistory(r Recorder) Option {
	return func(c *Checker) { c.history = r }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

// WithSleep replaces the wait between iterations.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Checker) { c.sleep = sleep }
}

func NewChecker(store Store, fetcher ipcheck.Fetcher, notifier notify.Notifier, opts ...Option) *Checker {
	c := &Checker{
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
		logger:   logging.Discard(),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run repeats RunOnce, sleeping the configured interval in between, until
// ctx is cancelled. Store failures end the loop; everything else is logged.
func (c *Checker) Run(ctx context.Context) error {
	c.logger.Info("starting ip monitor")
	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := c.RunOnce(ctx)
		if err != nil {
			return err
		}
		c.logger.Debug("next check", "in", res.Interval)
		if err := c.sleep(ctx, res.Interval); err != nil {
			c.logger.Info("stopping ip monitor")
			return nil
		}
	}
}

// RunOnce performs a single check. The configuration is re-read from the
// store so edits made between iterations take effect.
func (c *Checker) RunOnce(ctx context.Context) (Result, error) {
	cfg, err := config.Load(c.store)
	if err != nil {
		c.logger.Error("failed to load config", "err", err)
		return Result{}, err
	}
	res := Result{
		PreviousIP: cfg.IPAddress,
		Failures:   cfg.SequentialFailures,
		Interval:   cfg.Interval(),
	}

	ip, err := c.fetcher.FetchPublicIP(ctx)
	if err != nil {
		return c.fetchFailed(cfg, res, err)
	}
	res.IP = ip

	if cfg.SequentialFailures > 0 {
		if err := c.store.SetKey(config.KeySequentialFailures, document.NumberValue(0)); err != nil {
			return res, err
		}
		c.logger.Info("ip lookup recovered", "after_failures", cfg.SequentialFailures)
		res.Failures = 0
	}

	if ip == cfg.IPAddress {
		c.logger.Debug("ip has not changed", "ip", ip)
		res.Outcome = OutcomeUnchanged
		return res, nil
	}

	c.logger.Info("ip has changed", "old", cfg.IPAddress, "new", ip)
	res.Outcome = OutcomeChanged

	// The record is updated before notifying so a failed send is not
	// retried for the same change on the next iteration.
	if err := c.store.SetKey(config.KeyIPAddress, document.TextValue(ip)); err != nil {
		c.logger.Error("failed to save new ip", "err", err)
		return res, err
	}

	notifyCfg := cfg
	notifyCfg.IPAddress = ip
	res.NotifyErr = c.notifier.Notify(notifyCfg, notify.IPChanged(cfg.IPAddress, ip))
	if res.NotifyErr != nil {
		c.logger.Warn("failed to send notification", "err", res.NotifyErr)
	} else {
		c.logger.Info("notification sent", "to", cfg.RecipientAddress)
	}

	if c.history != nil {
		if _, err := c.history.Record(cfg.IPAddress, ip, res.NotifyErr); err != nil {
			c.logger.Warn("failed to record ip change", "err", err)
		}
	}
	return res, nil
}

func (c *Checker) fetchFailed(cfg config.Configuration, res Result, fetchErr error) (Result, error) {
	res.Outcome = OutcomeFetchFailed
	res.FetchErr = fetchErr
	res.Failures = cfg.SequentialFailures + 1
	c.logger.Warn("failed to get public ip", "err", fetchErr, "failures", res.Failures)

	if err := c.store.SetKey(config.KeySequentialFailures, document.NumberValue(float64(res.Failures))); err != nil {
		c.logger.Error("failed to save failure count", "err", err)
		return res, err
	}

	// Alert once per streak, when the count first reaches the threshold.
	if cfg.FailureAlertThreshold > 0 && res.Failures == cfg.FailureAlertThreshold {
		res.Alerted = true
		res.NotifyErr = c.notifier.Notify(cfg, notify.LookupFailing(res.Failures, fetchErr))
		if res.NotifyErr != nil {
			c.logger.Warn("failed to send failure alert", "err", res.NotifyErr)
		}
	}
	return res, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
