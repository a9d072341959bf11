package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// DispatcherConfig tunes a Dispatcher.
type DispatcherConfig struct {
	From        string
	To          string
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher delivers notifications on a background goroutine so that the
// request that triggered them never waits on the mail server.
//
// Enqueue never blocks; when the queue is full the message is dropped.
// Delivery errors go to the logger only.
type Dispatcher struct {
	notifier Notifier
	cfg      DispatcherConfig
	logger   *slog.Logger

	queue    chan Message
	stopCh   chan struct{}
	stopped  chan struct{}
	closed   atomic.Bool
	disabled atomic.Bool
}

// Verifier checks that a relay is reachable and accepts the credentials.
type Verifier interface {
	Verify(ctx context.Context) error
}

// NewDispatcher starts a dispatcher delivering through n.
func NewDispatcher(n Notifier, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		notifier: n,
		cfg:      cfg,
		logger:   logger,
		queue:    make(chan Message, cfg.QueueSize),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.stopped)

	for {
		select {
		case <-d.stopCh:
			// Deliver what was accepted before shutdown.
			for {
				select {
				case msg := <-d.queue:
					d.deliver(msg)
				default:
					return
				}
			}
		case msg := <-d.queue:
			d.deliver(msg)
		}
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, msg); err != nil {
		if !errors.Is(err, apperr.ErrNotification) {
			err = errors.Join(apperr.ErrNotification, err)
		}
		d.logger.Error("failed to send notification email",
			slog.String("to", msg.To),
			slog.String("error", err.Error()))
		return
	}
	d.logger.Info("notification email sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject))
}

// Verify runs v and disables the dispatcher if it fails. It is meant to run
// in the background while the server is already accepting requests;
// messages enqueued meanwhile are delivered normally.
func (d *Dispatcher) Verify(ctx context.Context, v Verifier) error {
	if err := v.Verify(ctx); err != nil {
		d.Disable()
		d.logger.Warn("SMTP verify failed; email notifications disabled", slog.String("error", err.Error()))
		return err
	}
	d.logger.Info("SMTP transporter ready", slog.String("notify_to", d.cfg.To))
	return nil
}

// Disable makes every later Enqueue a no-op.
func (d *Dispatcher) Disable() {
	d.disabled.Store(true)
}

// Enabled reports whether new messages are still accepted.
func (d *Dispatcher) Enabled() bool {
	return !d.disabled.Load() && !d.closed.Load()
}

// Enqueue schedules msg for delivery. It reports whether msg was accepted.
func (d *Dispatcher) Enqueue(msg Message) bool {
	if !d.Enabled() {
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Warn("notification queue full, dropping message", slog.String("subject", msg.Subject))
		return false
	}
}

// NotifyContact enqueues the notification for a stored record.
func (d *Dispatcher) NotifyContact(rec models.ContactRecord) {
	d.Enqueue(ComposeContact(rec, d.cfg.From, d.cfg.To))
}

// Close stops accepting messages, delivers the queued ones and returns.
// Safe on a nil Dispatcher.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	if d.closed.CompareAndSwap(false, true) {
		close(d.stopCh)
	}
	<-d.stopped
}
