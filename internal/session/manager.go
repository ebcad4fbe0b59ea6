// Package session owns the per-profile portfolio ledger and gamification
// tracker. Each profile's operations are serialised by its own mutex, and
// state is persisted to the configured store after every mutation.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"investor-edu/internal/gamification"
	"investor-edu/internal/metrics"
	"investor-edu/internal/model"
	"investor-edu/internal/notification"
	"investor-edu/internal/portfolio"
)

const (
	// DefaultProfile is used when a request names no profile.
	DefaultProfile = "default"

	PortfolioKeyPrefix    = "investor-edu-portfolio:"
	GamificationKeyPrefix = "investor-edu-gamification:"

	notifyTimeout = 10 * time.Second
)

// Event kinds.
const (
	KindTrade  = "trade"
	KindPrices = "prices"
	KindReset  = "reset"
)

// ErrInvalidProfile is returned for profile ids outside [A-Za-z0-9_.-]{1,64}.
var ErrInvalidProfile = errors.New("invalid profile id")

var profilePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// NormalizeProfile trims id, maps "" to DefaultProfile and validates it.
func NormalizeProfile(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultProfile, nil
	}
	if !profilePattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidProfile, id)
	}
	return id, nil
}

// Config wires a Manager to its collaborators. Only Store is required.
type Config struct {
	Store       model.StateStore
	Journal     model.TradeJournal
	Publisher   model.EventPublisher
	Notifier    notification.Notifier
	Metrics     *metrics.Metrics
	InitialCash float64
	Now         func() time.Time
	NewID       func() string
}

// Manager hands out per-profile sessions.
type Manager struct {
	cfg Config

	mu       sync.Mutex
	sessions map[string]*session

	wg sync.WaitGroup // in-flight notifications
}

type session struct {
	mu      sync.Mutex
	loaded  bool
	ledger  *portfolio.Ledger
	tracker *gamification.Tracker
}

// New creates a Manager.
func New(cfg Config) *Manager {
	if cfg.InitialCash <= 0 {
		cfg.InitialCash = portfolio.DefaultInitialCash
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{cfg: cfg, sessions: make(map[string]*session)}
}

// InitialCash is the balance new and reset portfolios start with.
func (m *Manager) InitialCash() float64 { return m.cfg.InitialCash }

// Close waits for pending notifications.
func (m *Manager) Close() {
	m.wg.Wait()
}

func (m *Manager) session(profile string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[profile]
	if !ok {
		s = &session{}
		m.sessions[profile] = s
	}
	return s
}

// with runs fn holding the profile's lock, loading persisted state on
// first use.
func (m *Manager) with(ctx context.Context, profile string, fn func(*session) error) error {
	s := m.session(profile)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		if err := m.load(ctx, profile, s); err != nil {
			return err
		}
		s.loaded = true
	}
	return fn(s)
}

func (m *Manager) load(ctx context.Context, profile string, s *session) error {
	ledgerOpts := []portfolio.Option{portfolio.WithClock(m.cfg.Now)}
	if m.cfg.NewID != nil {
		ledgerOpts = append(ledgerOpts, portfolio.WithIDGenerator(m.cfg.NewID))
	}
	s.ledger = portfolio.NewLedger(m.cfg.InitialCash, ledgerOpts...)
	s.tracker = gamification.NewTracker(gamification.WithClock(m.cfg.Now))

	raw, err := m.cfg.Store.Load(ctx, PortfolioKeyPrefix+profile)
	if err != nil {
		m.cfg.Metrics.StoreFailed("load")
		return fmt.Errorf("load portfolio %s: %w", profile, err)
	}
	if raw != nil {
		var p model.Portfolio
		if err := json.Unmarshal(raw, &p); err != nil {
			slog.Warn("discarding unreadable portfolio state", "component", "session", "profile", profile, "error", err)
		} else {
			s.ledger.Restore(p)
		}
	}

	raw, err = m.cfg.Store.Load(ctx, GamificationKeyPrefix+profile)
	if err != nil {
		m.cfg.Metrics.StoreFailed("load")
		return fmt.Errorf("load progress %s: %w", profile, err)
	}
	if raw != nil {
		var st gamification.State
		if err := json.Unmarshal(raw, &st); err != nil {
			slog.Warn("discarding unreadable progress state", "component", "session", "profile", profile, "error", err)
		} else {
			s.tracker.Restore(st)
		}
	}
	return nil
}

// persist saves both blobs. Failures are logged and counted; the in-memory
// state stays authoritative and is saved again on the next mutation.
// The ledger has already changed, so a cancelled request still saves.
func (m *Manager) persist(ctx context.Context, profile string, s *session) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	save := func(key string, v any) {
		data, err := json.Marshal(v)
		if err == nil {
			err = m.cfg.Store.Save(ctx, key, data)
		}
		if err != nil {
			m.cfg.Metrics.StoreFailed("save")
			slog.Error("state save failed", "component", "session", "key", key, "error", err)
		}
	}
	save(PortfolioKeyPrefix+profile, s.ledger.Snapshot())
	save(GamificationKeyPrefix+profile, s.tracker.State())
	m.cfg.Metrics.ObserveSave(time.Since(start))
}

func (m *Manager) publish(ctx context.Context, profile, kind string, p model.Portfolio) {
	if m.cfg.Publisher == nil {
		return
	}
	ev := model.PortfolioEvent{Profile: profile, Kind: kind, Portfolio: p, TS: m.cfg.Now()}
	if err := m.cfg.Publisher.PublishPortfolio(context.WithoutCancel(ctx), ev); err != nil {
		slog.Warn("portfolio event publish failed", "component", "session", "profile", profile, "error", err)
	}
}

// claim unlocks qualifying achievements and announces them and any level-up.
func (m *Manager) claim(ctx context.Context, profile string, s *session, levelBefore int) []gamification.Achievement {
	unlocked := s.tracker.ClaimAchievements()
	var alerts []notification.Alert
	for _, a := range unlocked {
		m.cfg.Metrics.AchievementUnlocked(a.ID, a.Points)
		alerts = append(alerts, notification.Alert{
			Level:   notification.AlertHighlight,
			Profile: profile,
			Title:   "Achievement unlocked: " + a.Title,
			Message: fmt.Sprintf("%s %s (+%d points)", a.Icon, a.Description, a.Points),
		})
	}
	if lvl := s.tracker.Stats().Level; lvl > levelBefore {
		alerts = append(alerts, notification.Alert{
			Level:   notification.AlertInfo,
			Profile: profile,
			Title:   "Level up",
			Message: fmt.Sprintf("Reached level %d", lvl),
		})
	}
	m.notify(ctx, alerts)
	return unlocked
}

func (m *Manager) notify(ctx context.Context, alerts []notification.Alert) {
	if m.cfg.Notifier == nil || len(alerts) == 0 {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		for _, a := range alerts {
			if err := m.cfg.Notifier.Send(nctx, a); err != nil {
				slog.Warn("notification failed", "component", "session", "title", a.Title, "error", err)
			}
		}
	}()
}
