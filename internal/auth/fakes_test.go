package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*Account
	// failUpdate is returned once by the next UpdatePassword call.
	failUpdate error
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byEmail: map[string]*Account{}}
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byEmail[email]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *memAccounts) FindByID(_ context.Context, id primitive.ObjectID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byEmail {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memAccounts) Create(_ context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[account.Email]; ok {
		return ErrDuplicateEmail
	}
	cp := *account
	m.byEmail[account.Email] = &cp
	return nil
}

func (m *memAccounts) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failUpdate; err != nil {
		m.failUpdate = nil
		return err
	}
	for _, a := range m.byEmail {
		if a.ID == id {
			a.PasswordHash = hash
			a.UpdatedAt = at
			return nil
		}
	}
	return ErrAccountNotFound
}

func (m *memAccounts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}

type memLedger struct {
	mu      sync.Mutex
	entries map[primitive.ObjectID]*LedgerEntry
}

func newMemLedger() *memLedger {
	return &memLedger{entries: map[primitive.ObjectID]*LedgerEntry{}}
}

// Put keeps one entry per email, preserving the stored id on overwrite.
func (m *memLedger) Put(_ context.Context, entry *LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.Email == entry.Email {
			entry.ID = id
		}
	}
	cp := *entry
	m.entries[entry.ID] = &cp
	return nil
}

func (m *memLedger) FindByEmail(_ context.Context, email string) (*LedgerEntry, error) {
	return m.find(func(e *LedgerEntry) bool { return e.Email == email }), nil
}

func (m *memLedger) FindByEmailAndCode(_ context.Context, email, code string) (*LedgerEntry, error) {
	return m.find(func(e *LedgerEntry) bool { return e.Email == email && e.Code == code }), nil
}

func (m *memLedger) find(match func(*LedgerEntry) bool) *LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if match(e) {
			cp := *e
			return &cp
		}
	}
	return nil
}

func (m *memLedger) Reissue(_ context.Context, id primitive.ObjectID, code string, expiresAt, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return ErrLedgerEntryGone
	}
	e.Code = code
	e.ExpiresAt = expiresAt
	e.UpdatedAt = at
	return nil
}

func (m *memLedger) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *memLedger) count(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Email == email {
			n++
		}
	}
	return n
}

type sentMail struct {
	recipient string
	subject   string
	body      string
}

// fakeSender records deliveries; codes are read back from the body.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (f *fakeSender) Send(_ context.Context, recipient, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentMail{recipient: recipient, subject: subject, body: body})
	return nil
}

func (f *fakeSender) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no mail was sent")
	return f.sent[len(f.sent)-1]
}

type memGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (g *memGuard) Claim(_ context.Context, id string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[id] {
		return false, nil
	}
	g.seen[id] = true
	return true, nil
}

func (g *memGuard) Release(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, id)
	return nil
}

type countingEvents struct {
	mu       sync.Mutex
	failures map[string]int
}

func (c *countingEvents) AuthEvent(event string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures == nil {
		c.failures = map[string]int{}
	}
	if err != nil {
		c.failures[event]++
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const testDomain = "g.bracu.ac.bd"

type harness struct {
	svc      *UserService
	accounts *memAccounts
	pending  *memLedger
	resets   *memLedger
	sender   *fakeSender
	guard    *memGuard
	events   *countingEvents
	clock    *clock
	tokens   *TokenService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tokens, err := NewTokenService("test-secret", 12*time.Hour, 15*time.Minute)
	require.NoError(t, err)

	h := &harness{
		accounts: newMemAccounts(),
		pending:  newMemLedger(),
		resets:   newMemLedger(),
		sender:   &fakeSender{},
		guard:    &memGuard{},
		events:   &countingEvents{},
		clock:    &clock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		tokens:   tokens,
	}
	tokens.now = h.clock.Now
	h.svc = NewUserService(
		Settings{StudentEmailDomain: testDomain, OTPTTL: 10 * time.Minute},
		h.accounts, h.pending, h.resets, tokens, h.sender, h.guard, h.events, zap.NewNop(),
	)
	h.svc.now = h.clock.Now
	return h
}

var errRelayDown = errors.New("relay down")
