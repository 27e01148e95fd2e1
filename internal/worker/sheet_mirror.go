package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/export"
	"dompet/internal/export/sheets"
	"dompet/internal/store"
)

// MirrorConfig holds configuration for the sheet mirror.
type MirrorConfig struct {
	// FlushInterval is how often pending users are written (default: 10s)
	FlushInterval time.Duration

	// RefreshInterval is how often every known user is rewritten even
	// without a change message (default: 1h)
	RefreshInterval time.Duration

	// SheetPrefix names the per-user sheet: "<prefix> <user>" (default: "Transaksi")
	SheetPrefix string
}

func DefaultMirrorConfig() MirrorConfig {
	return MirrorConfig{
		FlushInterval:   10 * time.Second,
		RefreshInterval: time.Hour,
		SheetPrefix:     "Transaksi",
	}
}

// SheetMirror keeps one sheet per user in step with the user's transactions.
// Change messages only mark a user pending; writes happen in batches on the
// flush tick so a burst of edits costs one rewrite.
type SheetMirror struct {
	store  store.TransactionStore
	writer sheets.Writer
	config MirrorConfig

	mu      sync.Mutex
	pending map[string]struct{}
	known   map[string]struct{}
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSheetMirror(s store.TransactionStore, w sheets.Writer, config MirrorConfig) *SheetMirror {
	def := DefaultMirrorConfig()
	if config.FlushInterval <= 0 {
		config.FlushInterval = def.FlushInterval
	}
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = def.RefreshInterval
	}
	if config.SheetPrefix == "" {
		config.SheetPrefix = def.SheetPrefix
	}
	return &SheetMirror{
		store:   s,
		writer:  w,
		config:  config,
		pending: make(map[string]struct{}),
		known:   make(map[string]struct{}),
	}
}

// SheetName is the sheet a user's transactions are written to.
func (m *SheetMirror) SheetName(userID string) string {
	return fmt.Sprintf("%s %s", m.config.SheetPrefix, userID)
}

// HandleChange is an amqp consumer handler. Changes to budgets and goals do
// not affect the exported rows and are ignored.
func (m *SheetMirror) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	switch msg.Entity {
	case core.EntityTransaction, core.EntityWallet, core.EntityCategory:
	default:
		return nil
	}
	if msg.UserID == "" {
		return nil
	}
	m.mu.Lock()
	m.pending[msg.UserID] = struct{}{}
	m.known[msg.UserID] = struct{}{}
	m.mu.Unlock()
	slog.DebugContext(ctx, "Queued sheet rewrite", "user_id", msg.UserID, "entity", msg.Entity)
	return nil
}

// Flush rewrites the sheet of every pending user. Users whose write fails
// stay pending for the next flush.
func (m *SheetMirror) Flush(ctx context.Context) error {
	m.mu.Lock()
	users := make([]string, 0, len(m.pending))
	for u := range m.pending {
		users = append(users, u)
	}
	clear(m.pending)
	m.mu.Unlock()

	return m.write(ctx, users)
}

// Refresh rewrites the sheet of every user seen so far.
func (m *SheetMirror) Refresh(ctx context.Context) error {
	m.mu.Lock()
	users := make([]string, 0, len(m.known))
	for u := range m.known {
		users = append(users, u)
	}
	m.mu.Unlock()

	return m.write(ctx, users)
}

func (m *SheetMirror) write(ctx context.Context, users []string) error {
	slices.Sort(users)
	var errs []error
	for _, u := range users {
		if err := m.Mirror(ctx, u); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transactions", "user_id", u, "error", err)
			m.mu.Lock()
			m.pending[u] = struct{}{}
			m.mu.Unlock()
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Mirror rewrites one user's sheet now.
func (m *SheetMirror) Mirror(ctx context.Context, userID string) error {
	txs, err := m.store.ListTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	if err := m.writer.Replace(ctx, m.SheetName(userID), export.Rows(txs)); err != nil {
		return fmt.Errorf("replace sheet: %w", err)
	}
	m.mu.Lock()
	m.known[userID] = struct{}{}
	m.mu.Unlock()
	slog.InfoContext(ctx, "Mirrored transactions to sheet", "user_id", userID, "rows", len(txs))
	return nil
}

// Start begins the flush loop. Returns an error if already running.
func (m *SheetMirror) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("sheet mirror is already running")
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stop, done := m.stopCh, m.doneCh
	m.mu.Unlock()

	go m.runLoop(ctx, stop, done)

	slog.InfoContext(ctx, "Sheet mirror started",
		"flush_interval", m.config.FlushInterval,
		"refresh_interval", m.config.RefreshInterval)
	return nil
}

// Stop flushes what is pending and waits for the loop to end. Only the first
// of concurrent calls closes the loop; the others return at once.
func (m *SheetMirror) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	stop, done := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stop)

	select {
	case <-done:
		slog.InfoContext(ctx, "Sheet mirror stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sheet mirror stop timed out")
		return ctx.Err()
	}
	return nil
}

func (m *SheetMirror) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *SheetMirror) runLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	flush := time.NewTicker(m.config.FlushInterval)
	defer flush.Stop()
	refresh := time.NewTicker(m.config.RefreshInterval)
	defer refresh.Stop()

	for {
		select {
		case <-stop:
			m.Flush(context.WithoutCancel(ctx))
			return
		case <-ctx.Done():
			return
		case <-flush.C:
			m.Flush(ctx)
		case <-refresh.C:
			m.Refresh(ctx)
		}
	}
}
