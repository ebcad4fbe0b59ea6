package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investor-edu/internal/bus"
	"investor-edu/internal/gamification"
	"investor-edu/internal/model"
	"investor-edu/internal/notification"
	"investor-edu/internal/portfolio"
	"investor-edu/internal/store/memory"
)

type alertRecorder struct {
	mu  sync.Mutex
	got []notification.Alert
}

func (r *alertRecorder) Send(_ context.Context, a notification.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, a)
	return nil
}

type fixture struct {
	mgr    *Manager
	store  *memory.Store
	events chan model.PortfolioEvent
	alerts *alertRecorder
}

var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, store *memory.Store) *fixture {
	t.Helper()
	if store == nil {
		store = memory.NewStore()
	}
	events := make(chan model.PortfolioEvent, 128)
	alerts := &alertRecorder{}
	seq := 0
	var seqMu sync.Mutex
	mgr := New(Config{
		Store:     store,
		Journal:   store,
		Publisher: bus.NewChanPublisher(events),
		Notifier:  alerts,
		Now:       func() time.Time { return fixedNow },
		NewID: func() string {
			seqMu.Lock()
			defer seqMu.Unlock()
			seq++
			return fmt.Sprintf("t-%d", seq)
		},
	})
	return &fixture{mgr: mgr, store: store, events: events, alerts: alerts}
}

func buy(sym string, qty int64, price float64) model.Order {
	return model.Order{Symbol: sym, Side: model.SideBuy, Quantity: qty, Price: price}
}

func ids(as []gamification.Achievement) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func TestNormalizeProfile(t *testing.T) {
	p, err := NormalizeProfile("  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile, p)

	p, err = NormalizeProfile(" alice-01 ")
	require.NoError(t, err)
	assert.Equal(t, "alice-01", p)

	for _, bad := range []string{"a b", "x/y", "../etc", string(make([]byte, 65))} {
		_, err := NormalizeProfile(bad)
		assert.ErrorIs(t, err, ErrInvalidProfile, bad)
	}
}

func TestManager_FreshProfile(t *testing.T) {
	f := newFixture(t, nil)
	p, err := f.mgr.Portfolio(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, float64(portfolio.DefaultInitialCash), p.Cash)
	assert.Empty(t, p.Positions)

	st, err := f.mgr.Progress(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Stats.Level)
	assert.Equal(t, "2026-03-02", st.Stats.JoinDate)
}

func TestManager_TradeFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	out, err := f.mgr.Trade(ctx, "alice", buy("RELIANCE", 10, 100))
	require.NoError(t, err)
	assert.Equal(t, "t-1", out.Trade.ID)
	assert.InDelta(t, 998999.0, out.Portfolio.Cash, 1e-9)
	assert.Equal(t, []string{"first_trade"}, ids(out.Unlocked))

	st, err := f.mgr.Progress(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 100, st.Stats.TotalPoints, "first trade action plus achievement")
	assert.Equal(t, 2, st.Stats.Level)
	assert.InDelta(t, -1.0, st.Stats.TradingProfit, 1e-9)

	ev := <-f.events
	assert.Equal(t, "alice", ev.Profile)
	assert.Equal(t, KindTrade, ev.Kind)
	assert.Equal(t, fixedNow, ev.TS)

	journal, err := f.mgr.Journal(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, journal, 1)
	assert.Equal(t, "RELIANCE", journal[0].Symbol)

	p, err := f.mgr.UpdatePrices(ctx, "alice", map[string]float64{"RELIANCE": 120})
	require.NoError(t, err)
	assert.InDelta(t, 1000199.0, p.TotalValue, 1e-9)

	st, err = f.mgr.Progress(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 260, st.Stats.TotalPoints)
	assert.Contains(t, st.Stats.Achievements, "profitable_trader")

	f.mgr.Close()
	f.alerts.mu.Lock()
	defer f.alerts.mu.Unlock()
	var titles []string
	for _, a := range f.alerts.got {
		assert.Equal(t, "alice", a.Profile)
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Achievement unlocked: First Trade")
	assert.Contains(t, titles, "Achievement unlocked: Profitable Trader")
	assert.Contains(t, titles, "Level up")
}

func TestManager_RejectionLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.mgr.Trade(ctx, "bob", model.Order{Symbol: "TCS", Side: model.SideSell, Quantity: 1, Price: 10})
	assert.ErrorIs(t, err, portfolio.ErrInsufficientShares)
	_, err = f.mgr.Trade(ctx, "bob", buy("TCS", 1, 2_000_000))
	assert.ErrorIs(t, err, portfolio.ErrInsufficientFunds)
	_, err = f.mgr.Trade(ctx, "bob", buy("TCS", 0, 10))
	assert.ErrorIs(t, err, portfolio.ErrInvalidOrder)

	raw, err := f.store.Load(ctx, PortfolioKeyPrefix+"bob")
	require.NoError(t, err)
	assert.Nil(t, raw)
	assert.Empty(t, f.events)

	journal, err := f.mgr.Journal(ctx, "bob", 0)
	require.NoError(t, err)
	assert.Empty(t, journal)
}

func TestManager_StatePersistsAcrossManagers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	f := newFixture(t, store)

	_, err := f.mgr.Trade(ctx, "carol", buy("INFY", 5, 200))
	require.NoError(t, err)
	_, err = f.mgr.ToggleLesson(ctx, "carol", "basics-1")
	require.NoError(t, err)
	f.mgr.Close()

	raw, err := store.Load(ctx, PortfolioKeyPrefix+"carol")
	require.NoError(t, err)
	var saved model.Portfolio
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Len(t, saved.Positions, 1)

	g := newFixture(t, store)
	p, err := g.mgr.Portfolio(ctx, "carol")
	require.NoError(t, err)
	pos, ok := p.Position("INFY")
	require.True(t, ok)
	assert.Equal(t, int64(5), pos.Quantity)
	assert.Len(t, p.Trades, 1)

	st, err := g.mgr.Progress(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"basics-1"}, st.Progress.CompletedLessons)
	assert.Contains(t, st.Stats.Achievements, "first_lesson")
}

// ctxStore fails writes whose context is already done, like a network store.
type ctxStore struct {
	*memory.Store
}

func (s ctxStore) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Save(ctx, key, data)
}

func (s ctxStore) RecordTrade(ctx context.Context, profile string, trade model.Trade) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.RecordTrade(ctx, profile, trade)
}

func TestManager_CancelledRequestStillSaves(t *testing.T) {
	mem := memory.NewStore()
	store := ctxStore{mem}
	mgr := New(Config{Store: store, Journal: store, Now: func() time.Time { return fixedNow }})
	defer mgr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := mgr.Trade(ctx, "erin", buy("TCS", 2, 100))
	require.NoError(t, err)

	bg := context.Background()
	raw, err := mem.Load(bg, PortfolioKeyPrefix+"erin")
	require.NoError(t, err)
	require.NotNil(t, raw)
	var saved model.Portfolio
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Len(t, saved.Positions, 1)

	raw, err = mem.Load(bg, GamificationKeyPrefix+"erin")
	require.NoError(t, err)
	assert.NotNil(t, raw)

	journal, err := mem.RecentTrades(bg, "erin", 10)
	require.NoError(t, err)
	assert.Len(t, journal, 1)
}

func TestManager_ResetPortfolioKeepsProgressAndJournal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.mgr.Trade(ctx, "dan", buy("ITC", 10, 400))
	require.NoError(t, err)
	before, _ := f.mgr.Progress(ctx, "dan")

	p, err := f.mgr.ResetPortfolio(ctx, "dan")
	require.NoError(t, err)
	assert.Equal(t, f.mgr.InitialCash(), p.Cash)
	assert.Empty(t, p.Trades)

	after, _ := f.mgr.Progress(ctx, "dan")
	assert.Equal(t, before.Stats.TotalPoints, after.Stats.TotalPoints)

	journal, err := f.mgr.Journal(ctx, "dan", 0)
	require.NoError(t, err)
	assert.Len(t, journal, 1)
}

func TestManager_ProgressOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	out, err := f.mgr.SubmitQuiz(ctx, "erin", "quiz-1", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, out.State.Progress.QuizScores["quiz-1"])
	assert.Contains(t, ids(out.Unlocked), "perfect_score")
	assert.Contains(t, ids(out.Unlocked), "quiz_ace")

	_, err = f.mgr.SubmitQuiz(ctx, "erin", "quiz-2", 101)
	assert.ErrorIs(t, err, gamification.ErrInvalidScore)

	out, err = f.mgr.TranslateDocument(ctx, "erin")
	require.NoError(t, err)
	assert.Equal(t, 1, out.State.Stats.DocumentsTranslated)

	_, fresh, err := f.mgr.RecordLogin(ctx, "erin")
	require.NoError(t, err)
	assert.False(t, fresh, "join day already counts as a login")

	out, err = f.mgr.ToggleLesson(ctx, "erin", "l1")
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, out.State.Progress.CompletedLessons)
	out, err = f.mgr.ToggleLesson(ctx, "erin", "l1")
	require.NoError(t, err)
	assert.Empty(t, out.State.Progress.CompletedLessons)

	list, err := f.mgr.Achievements(ctx, "erin")
	require.NoError(t, err)
	assert.Len(t, list, len(gamification.Catalog()))
	unlocked := map[string]bool{}
	for _, a := range list {
		unlocked[a.ID] = a.Unlocked
	}
	assert.True(t, unlocked["perfect_score"])
	assert.False(t, unlocked["dedication_master"])

	st, err := f.mgr.ResetProgress(ctx, "erin")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Stats.TotalPoints)
	assert.Empty(t, st.Stats.Achievements)
}

func TestManager_ConcurrentTradesSerialised(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.mgr.Trade(ctx, "shared", buy("SBIN", 1, 800))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	f.mgr.Close()

	p, err := f.mgr.Portfolio(ctx, "shared")
	require.NoError(t, err)
	pos, ok := p.Position("SBIN")
	require.True(t, ok)
	assert.Equal(t, int64(50), pos.Quantity)
	assert.Len(t, p.Trades, 50)

	journal, err := f.mgr.Journal(ctx, "shared", 0)
	require.NoError(t, err)
	assert.Len(t, journal, 50)
}
