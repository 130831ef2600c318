package internal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is the fixed notification polling period
const DefaultPollInterval = 8 * time.Second

const batchAlertTitle = "분석 완료"

// Alert is a local notice raised for newly completed analyses
type Alert struct {
	Title string
	Body  string
}

// Alerter presents alerts to the user
type Alerter interface {
	Alert(a Alert)
}

// AlerterFunc adapts a function to Alerter
type AlerterFunc func(Alert)

// Alert calls f(a)
func (f AlerterFunc) Alert(a Alert) { f(a) }

// NotificationSource is the part of the API the poller needs
type NotificationSource interface {
	UnreadNotifications(ctx context.Context) ([]Notification, error)
	MarkAllNotificationsRead(ctx context.Context) error
}

// Poller checks for unread notifications on a fixed interval. A tick that
// starts while the previous one is still running is dropped.
type Poller struct {
	source   NotificationSource
	alerter  Alerter
	interval time.Duration

	polling atomic.Bool
	unread  atomic.Int64
	dropped atomic.Int64
}

// NewPoller creates a Poller; interval <= 0 means DefaultPollInterval
func NewPoller(source NotificationSource, alerter Alerter, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{source: source, alerter: alerter, interval: interval}
}

// UnreadCount returns the count observed by the last completed tick
func (p *Poller) UnreadCount() int {
	return int(p.unread.Load())
}

// Dropped returns how many ticks were skipped because one was in flight
func (p *Poller) Dropped() int {
	return int(p.dropped.Load())
}

// Run ticks once immediately and then every interval until ctx is done.
// Ticks run in their own goroutines; cancelling ctx stops future ticks but
// lets in-flight ones finish. Run returns after they have.
func (p *Poller) Run(ctx context.Context) {
	var wg sync.WaitGroup
	tickCtx := context.WithoutCancel(ctx)
	fire := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Tick(tickCtx)
		}()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	fire()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-ticker.C:
			// select picks randomly when ctx is done and a tick is pending
			if ctx.Err() != nil {
				continue
			}
			fire()
		}
	}
}

// Tick performs one poll. It returns false when dropped due to an in-flight tick.
func (p *Poller) Tick(ctx context.Context) bool {
	if !p.polling.CompareAndSwap(false, true) {
		p.dropped.Add(1)
		LogDebug("Notification poll still in flight, dropping tick")
		return false
	}
	defer p.polling.Store(false)

	items, err := p.source.UnreadNotifications(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			LogDebug("Unread notifications returned %d", apiErr.StatusCode)
			p.unread.Store(0)
			return true
		}
		LogWarn("Notification poll failed: %v", err)
		return true
	}

	p.unread.Store(int64(len(items)))
	if len(items) == 0 {
		return true
	}

	if p.alerter != nil {
		p.alerter.Alert(alertFor(items))
	}

	if err := p.source.MarkAllNotificationsRead(ctx); err != nil {
		LogWarn("Failed to mark notifications read: %v", err)
	}
	p.unread.Store(0)
	return true
}

// alertFor builds the alert for a non-empty batch
func alertFor(items []Notification) Alert {
	if len(items) == 1 {
		return Alert{Title: items[0].Title, Body: items[0].Message}
	}
	return Alert{
		Title: batchAlertTitle,
		Body:  fmt.Sprintf("%d건의 계약서 분석이 완료되었습니다.", len(items)),
	}
}

// PollerBinding keeps exactly one Poller running for the current token. Every
// token change tears the running poller down; a new one starts when the new
// token is non-empty.
type PollerBinding struct {
	auth     *Authenticator
	alerter  Alerter
	interval time.Duration

	mu          sync.Mutex
	parent      context.Context
	token       string
	current     *Poller
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// NewPollerBinding creates an unstarted binding
func NewPollerBinding(auth *Authenticator, alerter Alerter, interval time.Duration) *PollerBinding {
	return &PollerBinding{auth: auth, alerter: alerter, interval: interval}
}

// Start applies the current session and follows every later change until ctx
// is done or Close is called
func (b *PollerBinding) Start(ctx context.Context) {
	b.mu.Lock()
	b.parent = ctx
	b.mu.Unlock()

	b.apply(b.auth.Session().Token)
	unsubscribe := b.auth.Subscribe(func(s Session) { b.apply(s.Token) })

	b.mu.Lock()
	b.unsubscribe = unsubscribe
	b.mu.Unlock()
}

// apply restarts the poller when token differs from the bound one
func (b *PollerBinding) apply(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.parent == nil || (token == b.token && (b.current != nil || token == "")) {
		return
	}
	b.token = token

	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.current = nil
	if token == "" {
		LogDebug("No token, notification polling stopped")
		return
	}

	poller := NewPoller(b.auth.client.WithToken(token), b.alerter, b.interval)
	ctx, cancel := context.WithCancel(b.parent)
	b.current = poller
	b.cancel = cancel

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		poller.Run(ctx)
	}()
	LogDebug("Notification polling started (every %s)", poller.interval)
}

// UnreadCount returns the running poller's count, or 0 when none is running
func (b *PollerBinding) UnreadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return 0
	}
	return b.current.UnreadCount()
}

// Running reports whether a poller is active
func (b *PollerBinding) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current != nil
}

// Close stops following the session and waits for pollers to exit
func (b *PollerBinding) Close() {
	b.mu.Lock()
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.current = nil
	b.parent = nil
	b.mu.Unlock()

	b.wg.Wait()
}
