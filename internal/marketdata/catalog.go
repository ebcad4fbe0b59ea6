package marketdata

import (
	"sort"
	"time"
)

// CatalogDays is the length of every generated catalog series.
const CatalogDays = 252

type listing struct {
	symbol, name, sector, marketCap string
	start, drift, vol               float64
}

var listings = []listing{
	{"NIFTY50", "Nifty 50 Index", "Index", "Index", 22000, 0.0004, 0.015},
	{"RELIANCE", "Reliance Industries Ltd", "Oil & Gas", "₹18,50,000 Cr", 2900, 0.0006, 0.02},
	{"TCS", "Tata Consultancy Services", "IT Services", "₹14,20,000 Cr", 3800, 0.0005, 0.018},
	{"INFY", "Infosys Limited", "IT Services", "₹7,80,000 Cr", 1850, 0.0004, 0.019},
	{"HDFC", "HDFC Bank Limited", "Banking", "₹12,40,000 Cr", 1650, 0.0003, 0.016},
	{"ICICIBANK", "ICICI Bank Limited", "Banking", "₹8,90,000 Cr", 1250, 0.0005, 0.017},
	{"SBIN", "State Bank of India", "Banking", "₹6,20,000 Cr", 820, 0.0004, 0.022},
	{"ITC", "ITC Limited", "FMCG", "₹5,80,000 Cr", 465, 0.0002, 0.014},
	{"HDFCBANK", "HDFC Bank Limited", "Banking", "₹12,40,000 Cr", 1650, 0.0003, 0.016},
	{"WIPRO", "Wipro Limited", "IT Services", "₹2,90,000 Cr", 550, 0.0003, 0.02},
}

// Catalog is the fixed set of practice tickers with generated histories.
type Catalog struct {
	stocks map[string]Stock
}

// NewCatalog generates a CatalogDays series for every listing.
func NewCatalog(rnd func() float64, end time.Time) *Catalog {
	c := &Catalog{stocks: make(map[string]Stock, len(listings))}
	for _, l := range listings {
		data := Realistic(rnd, l.start, l.drift, l.vol, CatalogDays, end)
		s := Stock{
			Symbol:    l.symbol,
			Name:      l.name,
			Sector:    l.sector,
			MarketCap: l.marketCap,
			Data:      data,
		}
		if n := len(data); n >= 2 {
			cur, prev := data[n-1].Close, data[n-2].Close
			s.CurrentPrice = cur
			s.Change = round2(cur - prev)
			if prev != 0 {
				s.ChangePercent = round2((cur - prev) / prev * 100)
			}
		}
		c.stocks[l.symbol] = s
	}
	return c
}

// Get returns the catalog entry for symbol.
func (c *Catalog) Get(symbol string) (Stock, bool) {
	s, ok := c.stocks[symbol]
	return s, ok
}

// Symbols returns the catalog tickers in alphabetical order.
func (c *Catalog) Symbols() []string {
	out := make([]string, 0, len(c.stocks))
	for s := range c.stocks {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Stocks returns every entry, ordered by symbol.
func (c *Catalog) Stocks() []Stock {
	syms := c.Symbols()
	out := make([]Stock, len(syms))
	for i, s := range syms {
		out[i] = c.stocks[s]
	}
	return out
}
