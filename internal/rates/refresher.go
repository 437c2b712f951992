package rates

import (
	"context"
	"fmt"
	"strings"
	"time"

	applog "costbook/internal/log"
)

// Policy decides when the rate table is refetched.
type Policy string

const (
	// PolicyOnDemand refetches only on explicit refresh calls.
	PolicyOnDemand Policy = "on-demand"
	// PolicyPerReport refetches before every report.
	PolicyPerReport Policy = "per-report"
	// PolicyInterval refetches on a background ticker.
	PolicyInterval Policy = "interval"
)

// DefaultRefreshInterval is used by PolicyInterval when none is configured.
const DefaultRefreshInterval = time.Hour

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyOnDemand, nil
	case PolicyOnDemand, PolicyPerReport, PolicyInterval:
		return p, nil
	default:
		return "", fmt.Errorf("unknown rates refresh policy %q (want on-demand, per-report or interval)", s)
	}
}

// Refresher applies a Policy on top of a Fetcher.
type Refresher struct {
	fetcher  *Fetcher
	policy   Policy
	interval time.Duration
	logger   *applog.Logger
}

func NewRefresher(fetcher *Fetcher, policy Policy, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{
		fetcher:  fetcher,
		policy:   policy,
		interval: interval,
		logger:   applog.Component(applog.ComponentRates),
	}
}

func (r *Refresher) Policy() Policy {
	return r.policy
}

// CurrentRates returns the table a report should convert with.
func (r *Refresher) CurrentRates(ctx context.Context) Table {
	if r.policy == PolicyPerReport {
		return r.fetcher.Refresh(ctx)
	}
	return r.fetcher.Book().Rates()
}

// Refresh fetches now regardless of policy.
func (r *Refresher) Refresh(ctx context.Context) Table {
	return r.fetcher.Refresh(ctx)
}

// Run refreshes immediately and then on every tick until ctx is done.
// It returns at once for policies other than PolicyInterval.
func (r *Refresher) Run(ctx context.Context) {
	if r.policy != PolicyInterval {
		return
	}
	r.logger.Info("Rate refresher started",
		applog.FieldRatesPolicy, r.policy,
		"interval", r.interval.String())

	r.fetcher.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Rate refresher stopped")
			return
		case <-ticker.C:
			r.fetcher.Refresh(ctx)
		}
	}
}
