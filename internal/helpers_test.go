package courier

import (
	"context"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/jordan-wright/email"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 21, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// spyDispatcher records submissions instead of sending them.
type spyDispatcher struct {
	mu    sync.Mutex
	calls []ContactRequest
	metas []Meta
	err   error
}

func (s *spyDispatcher) Send(_ context.Context, p ContactRequest, meta Meta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p)
	s.metas = append(s.metas, meta)
	return s.err
}

func (s *spyDispatcher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// recordingTransport captures composed messages. When block is set, Send
// waits on it and ignores ctx, like a transport stuck in a retry loop.
type recordingTransport struct {
	mu    sync.Mutex
	sent  []*email.Email
	err   error
	block chan struct{}
}

func (tr *recordingTransport) Send(_ context.Context, e *email.Email) error {
	if tr.block != nil {
		<-tr.block
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.sent = append(tr.sent, e)
	return tr.err
}

func (tr *recordingTransport) Sent() []*email.Email {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]*email.Email(nil), tr.sent...)
}

// failingLimiter stands in for a shared store that is down.
type failingLimiter struct {
	mu    sync.Mutex
	calls int
}

func (f *failingLimiter) Limited(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return false, ErrStoreUnavailable
}

func testMailCfg() MailCfg {
	return MailCfg{
		SMTP: SMTPCfg{
			Host:            "smtp.example.com",
			Port:            587,
			User:            "owner@example.com",
			Pass:            "secret",
			ConnectTimeout:  time.Second,
			GreetingTimeout: time.Second,
			SocketTimeout:   time.Second,
		},
		SendTimeout:   time.Second,
		SendPerMinute: 600,
		SendBurst:     10,
		FromName:      "Omid Portfolio",
		TimeZone:      "Asia/Tehran",
		Calendar:      CalendarPersian,
	}
}

func testConfig() *Config {
	return &Config{
		MaxBodyKB: 64,
		AllowJSON: true,
		AllowForm: true,
		Mail:      testMailCfg(),
		Rate:      RateCfg{Max: 5, Window: 10 * time.Minute, KeyPrefix: "rl:contact:"},
	}
}
