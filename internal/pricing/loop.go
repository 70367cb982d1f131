// Package pricing runs the price-update loop: it polls the price source for
// every position, revalues positions whose price moved and fires the alerts
// whose target was crossed.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/dexscreener"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/notify"
)

// Epsilon is the smallest absolute price change that counts as an update.
const Epsilon = 1e-6

// PortfolioStore is the loop's view of the portfolio collection.
type PortfolioStore interface {
	Snapshot(ctx context.Context) ([]model.Portfolio, error)
	UpdatePositionPrice(ctx context.Context, portfolioID, positionID string, price float64) (model.Position, error)
}

// AlertStore is the loop's view of the alert collection.
type AlertStore interface {
	// PendingForPosition returns the alerts bound to positionID that have not triggered.
	PendingForPosition(ctx context.Context, positionID string) ([]model.Alert, error)
	MarkFired(ctx context.Context, alertID string, at time.Time) error
}

// Notifier delivers a fired alert to its channels.
type Notifier interface {
	Dispatch(ctx context.Context, event model.AlertEvent) []notify.ChannelResult
}

// Pacer throttles requests to the price source. ratelimit.Limiter satisfies it.
type Pacer interface {
	Take() time.Time
}

// FiredFunc is called once per fired alert, after its channels ran.
type FiredFunc func(event model.AlertEvent, results []notify.ChannelResult)

// CycleReport summarizes one pass over all positions.
type CycleReport struct {
	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`
	Visited    int       `json:"visited"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Fired      int       `json:"fired"`
}

// Loop is the price-update loop controller.
type Loop struct {
	source     dexscreener.Client
	portfolios PortfolioStore
	alerts     AlertStore
	notifier   Notifier
	scheduler  Scheduler
	pacer      Pacer
	clock      clock.Clock
	interval   time.Duration
	logger     logger.Logger

	onFired FiredFunc

	mu         sync.Mutex
	lastPrices map[string]float64
	lastReport *CycleReport
	cancel     context.CancelFunc

	running atomic.Bool // a cycle is in progress
	started atomic.Bool
	halted  atomic.Bool // Stop was called; late results are discarded
}

func NewLoop(
	source dexscreener.Client,
	portfolios PortfolioStore,
	alerts AlertStore,
	notifier Notifier,
	scheduler Scheduler,
	pacer Pacer,
	clk clock.Clock,
	interval time.Duration,
	logger logger.Logger,
) *Loop {
	return &Loop{
		source:     source,
		portfolios: portfolios,
		alerts:     alerts,
		notifier:   notifier,
		scheduler:  scheduler,
		pacer:      pacer,
		clock:      clk,
		interval:   interval,
		logger:     logger.With("component", "price-loop"),
		lastPrices: make(map[string]float64),
	}
}

// OnFired registers the callback for fired alerts. Call before Start.
func (l *Loop) OnFired(fn FiredFunc) {
	l.onFired = fn
}

// Start runs a first cycle immediately and then one every interval.
func (l *Loop) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return apperrors.ErrLoopStarted
	}
	l.halted.Store(false)

	loopCtx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()

	if err := l.scheduler.Schedule(l.interval, func() { l.tick(loopCtx) }); err != nil {
		cancel()
		l.started.Store(false)
		return err
	}
	go l.tick(loopCtx)

	l.logger.Infof("price loop started, interval %s", l.interval)
	return nil
}

// Stop cancels the schedule. A cycle in flight finishes its current request
// but applies nothing further.
func (l *Loop) Stop() {
	if !l.started.CompareAndSwap(true, false) {
		return
	}
	l.halted.Store(true)
	l.scheduler.Stop()

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mu.Unlock()

	l.logger.Infof("price loop stopped")
}

// Active reports whether the loop is scheduled.
func (l *Loop) Active() bool {
	return l.started.Load()
}

// Running reports whether a cycle is in progress.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// LastReport returns the report of the last completed cycle.
func (l *Loop) LastReport() (CycleReport, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lastReport == nil {
		return CycleReport{}, false
	}
	return *l.lastReport, true
}

func (l *Loop) tick(ctx context.Context) {
	report, err := l.RunCycle(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrCycleInProgress) {
			l.logger.Warnf("skipping price cycle: %v", err)
			return
		}
		l.logger.Errorf("price cycle failed: %v", err)
		return
	}
	l.logger.Debugf("price cycle done: visited %d, updated %d, skipped %d, fired %d in %dms",
		report.Visited, report.Updated, report.Skipped, report.Fired, report.DurationMs)
}

// RunCycle visits every position of every portfolio in order. Per-position
// failures are logged and counted, never returned.
func (l *Loop) RunCycle(ctx context.Context) (CycleReport, error) {
	if !l.running.CompareAndSwap(false, true) {
		return CycleReport{}, apperrors.ErrCycleInProgress
	}
	defer l.running.Store(false)

	report := CycleReport{StartedAt: l.clock.Now().UTC()}

	portfolios, err := l.portfolios.Snapshot(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to snapshot portfolios: %w", err)
	}

	seen := make(map[string]float64)

	for _, p := range portfolios {
		for _, pos := range p.Positions {
			if ctx.Err() != nil || l.halted.Load() {
				return l.finish(report), nil
			}
			report.Visited++
			l.visit(ctx, p.ID, pos, seen, &report)
		}
	}
	return l.finish(report), nil
}

func (l *Loop) finish(report CycleReport) CycleReport {
	report.DurationMs = l.clock.Since(report.StartedAt).Milliseconds()
	l.mu.Lock()
	l.lastReport = &report
	l.mu.Unlock()
	return report
}

func (l *Loop) visit(ctx context.Context, portfolioID string, pos model.Position, seen map[string]float64, report *CycleReport) {
	l.pacer.Take()

	info, err := l.source.Lookup(ctx, pos.ContractAddress)
	if err != nil {
		report.Skipped++
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			l.logger.Debugf("no price for %s (%s)", pos.TokenSymbol, pos.ContractAddress)
		} else {
			l.logger.Warnf("price lookup for %s failed: %v", pos.TokenSymbol, err)
		}
		return
	}

	price := info.CurrentPrice
	if !(price > 0) || math.IsInf(price, 0) {
		report.Skipped++
		l.logger.Warnf("ignoring invalid price %v for %s", price, pos.TokenSymbol)
		return
	}
	if math.Abs(price-pos.CurrentPrice) <= Epsilon {
		return
	}
	if l.halted.Load() {
		return
	}

	// Positions sharing a contract address compare against the same baseline.
	old, ok := seen[pos.ContractAddress]
	if !ok {
		old = l.lastObserved(pos.ContractAddress, pos.CurrentPrice)
	}

	updated, err := l.portfolios.UpdatePositionPrice(ctx, portfolioID, pos.ID, price)
	if err != nil {
		// The baseline stays put so the next cycle still sees the crossing.
		report.Skipped++
		l.logger.Warnf("failed to update %s price: %v", pos.TokenSymbol, err)
		return
	}
	report.Updated++
	seen[pos.ContractAddress] = old

	l.evaluate(ctx, portfolioID, updated, old, price, report)
	l.observe(pos.ContractAddress, price)
}

// lastObserved returns the last price the loop observed for address, seeded
// with fallback on first sight.
func (l *Loop) lastObserved(address string, fallback float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if old, ok := l.lastPrices[address]; ok {
		return old
	}
	return fallback
}

// observe records price as the last observed price for address.
func (l *Loop) observe(address string, price float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastPrices[address] = price
}

func (l *Loop) evaluate(ctx context.Context, portfolioID string, pos model.Position, old, price float64, report *CycleReport) {
	pending, err := l.alerts.PendingForPosition(ctx, pos.ID)
	if err != nil {
		l.logger.Warnf("failed to load alerts for %s: %v", pos.TokenSymbol, err)
		return
	}

	for _, alert := range pending {
		if !Crosses(old, price, alert.TargetPrice) {
			continue
		}
		if l.halted.Load() {
			return
		}

		now := l.clock.Now().UTC()
		event := model.AlertEvent{
			Alert:       alert,
			PortfolioID: portfolioID,
			Position:    pos,
			OldPrice:    old,
			NewPrice:    price,
			Direction:   model.DirectionOf(price, alert.TargetPrice),
			FiredAt:     now,
		}
		l.logger.Infof("alert %s fired: %s %s target %v (%v -> %v)",
			alert.ID, alert.TokenSymbol, event.Direction, alert.TargetPrice, old, price)

		results := l.notifier.Dispatch(ctx, event)
		report.Fired++
		if l.onFired != nil {
			l.onFired(event, results)
		}
		if err := l.alerts.MarkFired(ctx, alert.ID, now); err != nil {
			l.logger.Warnf("failed to mark alert %s fired: %v", alert.ID, err)
		}
	}
}

// Crosses reports whether a move from prev to next crossed or touched target.
func Crosses(prev, next, target float64) bool {
	return (prev < target && next >= target) || (prev > target && next <= target)
}
