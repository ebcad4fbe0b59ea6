// Package portfolio implements the simulated trading ledger: cash, positions
// with average-cost accounting, an append-only trade log and aggregate P&L.
//
// A Ledger is single-writer. It holds no lock; callers that share one across
// goroutines must serialise access (see internal/session).
package portfolio

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"investor-edu/internal/model"
)

// DefaultInitialCash is the starting balance of a new account (₹10,00,000).
const DefaultInitialCash = 1_000_000

const (
	brokerageRate = 0.001
	brokerageCap  = 20.0
)

// Brokerage returns the fee charged on a trade of the given value:
// 0.1% of value, capped at ₹20.
func Brokerage(value float64) float64 {
	return math.Min(value*brokerageRate, brokerageCap)
}

// Ledger tracks one simulated account.
type Ledger struct {
	pf    model.Portfolio
	now   func() time.Time
	newID func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the trade timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides trade id generation.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

// NewLedger creates a ledger holding initialCash and nothing else.
func NewLedger(initialCash float64, opts ...Option) *Ledger {
	l := &Ledger{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(l)
	}
	l.pf = freshPortfolio(initialCash)
	return l
}

func freshPortfolio(cash float64) model.Portfolio {
	return model.Portfolio{
		Cash:       cash,
		TotalValue: cash,
		Positions:  []model.Position{},
		Trades:     []model.Trade{},
	}
}

// ExecuteTrade applies a trade and reports whether it succeeded. A failed
// trade leaves the ledger untouched.
func (l *Ledger) ExecuteTrade(symbol string, side model.Side, quantity int64, price float64) bool {
	_, err := l.Execute(model.Order{Symbol: symbol, Side: side, Quantity: quantity, Price: price})
	return err == nil
}

// Execute applies order and returns the recorded trade.
//
// BUY debits value plus brokerage and folds the fill into the volume-weighted
// average price. SELL credits value minus brokerage, books realized P&L
// against the average price and removes the position once its quantity is
// exactly zero. Either the whole order applies or nothing does.
func (l *Ledger) Execute(o model.Order) (model.Trade, error) {
	symbol := strings.TrimSpace(o.Symbol)
	if err := validate(symbol, o); err != nil {
		return model.Trade{}, err
	}

	value := float64(o.Quantity) * o.Price
	fee := Brokerage(value)
	idx := l.positionIndex(symbol)

	switch o.Side {
	case model.SideBuy:
		if l.pf.Cash < value+fee {
			return model.Trade{}, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds, value+fee, l.pf.Cash)
		}
		l.pf.Cash -= value + fee
		if idx < 0 {
			pos := model.Position{Symbol: symbol, Quantity: o.Quantity, AveragePrice: o.Price}
			pos.Revalue(o.Price)
			l.pf.Positions = append(l.pf.Positions, pos)
		} else {
			pos := &l.pf.Positions[idx]
			newQty := pos.Quantity + o.Quantity
			pos.AveragePrice = (pos.CostBasis() + value) / float64(newQty)
			pos.Quantity = newQty
			pos.Revalue(o.Price)
		}

	case model.SideSell:
		if idx < 0 || l.pf.Positions[idx].Quantity < o.Quantity {
			held := int64(0)
			if idx >= 0 {
				held = l.pf.Positions[idx].Quantity
			}
			return model.Trade{}, fmt.Errorf("%w: want %d %s, hold %d", ErrInsufficientShares, o.Quantity, symbol, held)
		}
		l.pf.Cash += value - fee
		pos := &l.pf.Positions[idx]
		l.pf.RealizedPnL += (o.Price - pos.AveragePrice) * float64(o.Quantity)
		pos.Quantity -= o.Quantity
		if pos.Quantity == 0 {
			l.pf.Positions = append(l.pf.Positions[:idx], l.pf.Positions[idx+1:]...)
		} else {
			pos.Revalue(o.Price)
		}
	}

	trade := model.Trade{
		ID:        l.newID(),
		Symbol:    symbol,
		Side:      o.Side,
		Quantity:  o.Quantity,
		Price:     o.Price,
		Timestamp: l.now(),
		Value:     value,
	}
	l.pf.Trades = append([]model.Trade{trade}, l.pf.Trades...)
	l.recalculate()

	slog.Debug("trade executed", "component", "ledger",
		"symbol", symbol, "side", o.Side, "qty", o.Quantity, "price", o.Price, "brokerage", fee)
	return trade, nil
}

func validate(symbol string, o model.Order) error {
	switch {
	case symbol == "":
		return fmt.Errorf("%w: empty symbol", ErrInvalidOrder)
	case o.Side != model.SideBuy && o.Side != model.SideSell:
		return fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, o.Side)
	case o.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidOrder, o.Quantity)
	case !(o.Price > 0) || math.IsInf(o.Price, 0):
		return fmt.Errorf("%w: price must be positive and finite, got %v", ErrInvalidOrder, o.Price)
	}
	return nil
}

// UpdateMarketPrices revalues held positions whose symbol appears in prices.
// Zero, negative and non-finite prices are ignored, as are symbols not held.
func (l *Ledger) UpdateMarketPrices(prices map[string]float64) {
	for i := range l.pf.Positions {
		p, ok := prices[l.pf.Positions[i].Symbol]
		if !ok || !(p > 0) || math.IsInf(p, 0) {
			continue
		}
		l.pf.Positions[i].Revalue(p)
	}
	l.recalculate()
}

// Snapshot returns a copy of the current state.
func (l *Ledger) Snapshot() model.Portfolio {
	return l.pf.Clone()
}

// Reset discards positions, trades and realized P&L and restores
// initialCash.
func (l *Ledger) Reset(initialCash float64) {
	l.pf = freshPortfolio(initialCash)
}

// Restore replaces the ledger state with a previously saved snapshot.
// Positions with a non-positive quantity are dropped and the aggregates are
// recomputed from what remains.
func (l *Ledger) Restore(p model.Portfolio) {
	restored := freshPortfolio(p.Cash)
	restored.RealizedPnL = p.RealizedPnL
	for _, pos := range p.Positions {
		if pos.Quantity <= 0 || pos.Symbol == "" {
			continue
		}
		price := pos.CurrentPrice
		if !(price > 0) {
			price = pos.AveragePrice
		}
		pos.Revalue(price)
		restored.Positions = append(restored.Positions, pos)
	}
	restored.Trades = append(restored.Trades, p.Trades...)
	l.pf = restored
	l.recalculate()
}

func (l *Ledger) positionIndex(symbol string) int {
	for i := range l.pf.Positions {
		if l.pf.Positions[i].Symbol == symbol {
			return i
		}
	}
	return -1
}

// recalculate refreshes the aggregate fields from cash and positions.
func (l *Ledger) recalculate() {
	var marketValue, invested, pnl float64
	for _, pos := range l.pf.Positions {
		marketValue += pos.MarketValue
		invested += pos.CostBasis()
		pnl += pos.UnrealizedPnL
	}
	l.pf.TotalValue = l.pf.Cash + marketValue
	l.pf.TotalInvested = invested
	l.pf.TotalPnL = pnl
	if invested > 0 {
		l.pf.TotalPnLPercent = pnl / invested * 100
	} else {
		l.pf.TotalPnLPercent = 0
	}
}
