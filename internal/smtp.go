package courier

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/jordan-wright/email"
)

var ErrNoStartTLS = errors.New("smtp server does not offer STARTTLS")

// Transport delivers a composed message.
type Transport interface {
	Send(ctx context.Context, e *email.Email) error
}

// SMTPTransport speaks SMTP with mandatory STARTTLS and PLAIN auth. The
// connect, greeting and idle phases each have their own bound; cancelling
// ctx closes the connection.
type SMTPTransport struct {
	cfg       SMTPCfg
	tlsConfig *tls.Config
}

var _ Transport = (*SMTPTransport)(nil)

func NewSMTPTransport(cfg SMTPCfg) *SMTPTransport {
	return &SMTPTransport{
		cfg:       cfg,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
	}
}

func (t *SMTPTransport) Send(ctx context.Context, e *email.Email) error {
	from, rcpts, err := envelope(e)
	if err != nil {
		return err
	}
	msg, err := e.Bytes()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
	dialer := net.Dialer{Timeout: t.cfg.ConnectTimeout}
	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp connect %s: %w", addr, err)
	}
	stop := context.AfterFunc(ctx, func() { _ = raw.Close() })
	defer stop()

	conn := &idleConn{Conn: raw}
	if t.cfg.GreetingTimeout > 0 {
		_ = raw.SetDeadline(time.Now().Add(t.cfg.GreetingTimeout))
	}
	c, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		_ = raw.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()
	_ = raw.SetDeadline(time.Time{})
	conn.idle = t.cfg.SocketTimeout

	if err := c.Hello("localhost"); err != nil {
		return fmt.Errorf("smtp ehlo: %w", err)
	}
	if ok, _ := c.Extension("STARTTLS"); !ok {
		return ErrNoStartTLS
	}
	if err := c.StartTLS(t.tlsConfig); err != nil {
		return fmt.Errorf("smtp starttls: %w", err)
	}
	if err := c.Auth(smtp.PlainAuth("", t.cfg.User, t.cfg.Pass, t.cfg.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range rcpts {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

func envelope(e *email.Email) (string, []string, error) {
	from, err := mail.ParseAddress(e.From)
	if err != nil {
		return "", nil, fmt.Errorf("parse from %q: %w", e.From, err)
	}
	var rcpts []string
	for _, list := range [][]string{e.To, e.Cc, e.Bcc} {
		for _, a := range list {
			addr, err := mail.ParseAddress(a)
			if err != nil {
				return "", nil, fmt.Errorf("parse recipient %q: %w", a, err)
			}
			rcpts = append(rcpts, addr.Address)
		}
	}
	if len(rcpts) == 0 {
		return "", nil, errors.New("no recipients")
	}
	return from.Address, rcpts, nil
}

// idleConn pushes the deadline forward on every read and write once idle is set.
type idleConn struct {
	net.Conn
	idle time.Duration
}

func (c *idleConn) Read(p []byte) (int, error) {
	if c.idle > 0 {
		_ = c.Conn.SetDeadline(time.Now().Add(c.idle))
	}
	return c.Conn.Read(p)
}

func (c *idleConn) Write(p []byte) (int, error) {
	if c.idle > 0 {
		_ = c.Conn.SetDeadline(time.Now().Add(c.idle))
	}
	return c.Conn.Write(p)
}
