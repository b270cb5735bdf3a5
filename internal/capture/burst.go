package capture

import (
	"fmt"
	"time"

	"netmonsim/internal/catalog"
	"netmonsim/internal/models"
	"netmonsim/internal/sched"
)

// Correlator timing, measured from the triggering action.
const (
	navigateBurstOffset = 200 * time.Millisecond
	linkBurstOffset     = 300 * time.Millisecond
	websiteAlertDelay   = 1500 * time.Millisecond
	emailAlertDelay     = 800 * time.Millisecond
	linkAlertDelay      = 600 * time.Millisecond
)

// BurstConfig controls action-triggered bursts.
type BurstConfig struct {
	WebStep        time.Duration // delay between packets of a navigation burst
	EmailStep      time.Duration // delay between packets of an email burst
	RequireCapture bool          // only burst while the session is capturing
	Alerts         bool          // follow user actions with a correlator alert packet
	AlertTTL       time.Duration // how long alert packets stay queued
}

// DefaultBurstConfig returns the default burst timing.
func DefaultBurstConfig() BurstConfig {
	return BurstConfig{
		WebStep:   200 * time.Millisecond,
		EmailStep: 300 * time.Millisecond,
		Alerts:    true,
		AlertTTL:  10 * time.Second,
	}
}

// BurstEmitter replays every pattern of one source as a time-staggered
// sequence. Scheduled bursts cannot be cancelled.
type BurstEmitter struct {
	session *Session
	catalog *catalog.Catalog
	sched   sched.Scheduler
	cfg     BurstConfig
}

// NewBurstEmitter creates an emitter feeding session.
func NewBurstEmitter(session *Session, cat *catalog.Catalog, scheduler sched.Scheduler, cfg BurstConfig) *BurstEmitter {
	def := DefaultBurstConfig()
	if cfg.WebStep <= 0 {
		cfg.WebStep = def.WebStep
	}
	if cfg.EmailStep <= 0 {
		cfg.EmailStep = def.EmailStep
	}
	if cfg.AlertTTL <= 0 {
		cfg.AlertTTL = def.AlertTTL
	}
	return &BurstEmitter{session: session, catalog: cat, sched: scheduler, cfg: cfg}
}

// Website schedules one packet per pattern of the page's source and returns
// the number scheduled. Unknown hosts schedule nothing.
func (b *BurstEmitter) Website(rawURL string) int {
	if !b.active() {
		return 0
	}
	src, ok := b.catalog.Website(rawURL)
	if !ok {
		return 0
	}
	return b.schedule(src, 0, b.cfg.WebStep)
}

// Email schedules one packet per pattern of the sender's mail server.
func (b *BurstEmitter) Email(sender string) int {
	if !b.active() {
		return 0
	}
	src, ok := b.catalog.Email(sender)
	if !ok {
		return 0
	}
	return b.schedule(src, 0, b.cfg.EmailStep)
}

// Navigate correlates a page visit: a system DNS lookup right away, the page
// burst 200ms later and an alert at 1500ms. It returns the burst size.
func (b *BurstEmitter) Navigate(rawURL string) int {
	if !b.active() {
		return 0
	}
	b.lookup(fmt.Sprintf("DNS resolution for %s", rawURL))

	src, ok := b.catalog.Website(rawURL)
	n := 0
	if ok {
		n = b.schedule(src, navigateBurstOffset, b.cfg.WebStep)
	}
	b.alert(websiteAlertDelay, fmt.Sprintf("Website Visit: User navigated to %s", rawURL), src.Suspicious)
	return n
}

// OpenEmail correlates opening a message: the mail burst right away and an
// alert at 800ms.
func (b *BurstEmitter) OpenEmail(sender string) int {
	if !b.active() {
		return 0
	}
	src, ok := b.catalog.Email(sender)
	n := 0
	if ok {
		n = b.schedule(src, 0, b.cfg.EmailStep)
	}
	b.alert(emailAlertDelay, fmt.Sprintf("Email Activity: Email opened from %s", sender), src.Suspicious)
	return n
}

// LinkClicked correlates following a link from an email: a DNS lookup right
// away, the page burst at 300ms and an alert at 600ms. suspicious is the mail
// client's verdict on the link.
func (b *BurstEmitter) LinkClicked(rawURL string, suspicious bool) int {
	if !b.active() {
		return 0
	}
	b.lookup(fmt.Sprintf("DNS resolution for email link: %s", rawURL))

	src, ok := b.catalog.Website(rawURL)
	n := 0
	if ok {
		n = b.schedule(src, linkBurstOffset, b.cfg.WebStep)
	}

	msg := fmt.Sprintf("Link Click: User clicked email link to %s", rawURL)
	if suspicious {
		msg += " [SUSPICIOUS]"
	}
	b.alert(linkAlertDelay, msg, suspicious || src.Suspicious)
	return n
}

func (b *BurstEmitter) active() bool {
	return !b.cfg.RequireCapture || b.session.Running()
}

// schedule queues one emission per pattern at offset + i*step.
func (b *BurstEmitter) schedule(src models.TrafficSource, offset, step time.Duration) int {
	for i, p := range src.Patterns {
		b.sched.AfterFunc(offset+time.Duration(i)*step, func() {
			b.session.emitPattern(src, p)
		})
	}
	return len(src.Patterns)
}

// lookup emits the system resolver packet that precedes a page load.
func (b *BurstEmitter) lookup(info string) {
	b.sched.AfterFunc(0, func() { b.session.emitLookup(info) })
}

func (b *BurstEmitter) alert(delay time.Duration, info string, suspicious bool) {
	if !b.cfg.Alerts {
		return
	}
	b.sched.AfterFunc(delay, func() {
		pkt := b.session.emitAlert(info, suspicious)
		b.sched.AfterFunc(b.cfg.AlertTTL, func() { b.session.remove(pkt.ID) })
	})
}
