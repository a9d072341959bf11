package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	mail "github.com/wneessen/go-mail"

	"github.com/starford/folio/internal/apperr"
)

const implicitTLSPort = 465

// SMTPConfig holds connection parameters for SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration
}

// SMTPSender sends messages through an authenticated SMTP relay.
// Port 465 uses implicit TLS; any other port uses STARTTLS when offered.
type SMTPSender struct {
	client *mail.Client
}

// NewSMTPSender builds a sender. No connection is made until Verify or Notify.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	implicitTLS := cfg.Port == implicitTLSPort
	if implicitTLS {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	opts = append(opts, mail.WithDialContextFunc(deadlineDialer(cfg.Host, implicitTLS)))

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}
	return &SMTPSender{client: client}, nil
}

// deadlineDialer applies the dial context's deadline to the whole connection.
// Without it a relay that accepts but never greets blocks the session
// forever.
func deadlineDialer(host string, implicitTLS bool) mail.DialContextFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		var (
			d    net.Dialer
			conn net.Conn
			err  error
		)
		if implicitTLS {
			td := tls.Dialer{NetDialer: &d, Config: &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}}
			conn, err = td.DialContext(ctx, network, addr)
		} else {
			conn, err = d.DialContext(ctx, network, addr)
		}
		if err != nil {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok {
			_ = conn.SetDeadline(deadline)
		}
		return conn, nil
	}
}

// Verify dials and authenticates once, then disconnects.
func (s *SMTPSender) Verify(ctx context.Context) error {
	if err := s.client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("notify: smtp verify: %w", err)
	}
	return s.client.Close()
}

// Notify sends msg.
func (s *SMTPSender) Notify(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return fmt.Errorf("%w: from address: %w", apperr.ErrNotification, err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("%w: to address: %w", apperr.ErrNotification, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrNotification, err)
	}
	return nil
}
