package courier

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/jordan-wright/email"
	"golang.org/x/time/rate"
)

// Meta is what the endpoint knows about the request besides the form itself.
type Meta struct {
	IP        string
	UserAgent string
	Received  time.Time
}

// Dispatcher sends one notification per accepted submission.
type Dispatcher interface {
	Send(ctx context.Context, p ContactRequest, meta Meta) error
}

// Mailer composes notifications and hands them to a Transport. Sends are
// throttled process-wide and bounded by cfg.SendTimeout, token wait included.
type Mailer struct {
	cfg       MailCfg
	transport Transport
	throttle  *rate.Limiter
	loc       *time.Location
}

var _ Dispatcher = (*Mailer)(nil)

func NewMailer(cfg MailCfg, transport Transport) (*Mailer, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, cfg.TimeZone, err)
	}
	perSecond := rate.Limit(float64(cfg.SendPerMinute) / 60)
	return &Mailer{
		cfg:       cfg,
		transport: transport,
		throttle:  rate.NewLimiter(perSecond, cfg.SendBurst),
		loc:       loc,
	}, nil
}

// Send fails with ErrMissingCredentials before touching the network when the
// SMTP account is not configured. The send is detached from the caller's
// cancellation and abandoned once SendTimeout elapses.
func (m *Mailer) Send(ctx context.Context, p ContactRequest, meta Meta) error {
	if m.cfg.SMTP.User == "" || m.cfg.SMTP.Pass == "" {
		return ErrMissingCredentials
	}
	e, err := m.Compose(p, meta)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.SendTimeout)
	defer cancel()

	if err := m.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("%w: no send slot within %s: %w", ErrSendTimeout, m.cfg.SendTimeout, err)
	}

	done := make(chan error, 1)
	go func() { done <- m.transport.Send(ctx, e) }()

	select {
	case err := <-done:
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %w", ErrSendTimeout, m.cfg.SendTimeout, err)
		}
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w after %s", ErrSendTimeout, m.cfg.SendTimeout)
	}
}

func (m *Mailer) Compose(p ContactRequest, meta Meta) (*email.Email, error) {
	n := Notification{
		Brand:     m.cfg.FromName,
		Name:      p.Name,
		Email:     p.Email,
		Message:   p.Message,
		Time:      Timestamp(meta.Received, m.loc, m.cfg.Calendar),
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}
	html, err := n.HTML()
	if err != nil {
		return nil, err
	}

	e := email.NewEmail()
	e.From = (&mail.Address{Name: m.cfg.FromName, Address: m.cfg.SMTP.User}).String()
	e.To = []string{m.cfg.Recipient()}
	e.ReplyTo = []string{(&mail.Address{Name: singleLine(p.Name), Address: p.Email}).String()}
	e.Subject = n.Subject()
	e.Text = []byte(n.PlainText())
	e.HTML = []byte(html)
	return e, nil
}
