package marketdata

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"time"

	"investor-edu/internal/model"
)

const dateLayout = "2006-01-02"

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// RandomWalk returns days daily candles ending on end's date. Each day moves
// the close by a uniform shock in ±vol/2; highs and lows extend the body by
// 60% of the move and volume is around one million shares.
func RandomWalk(rnd func() float64, days int, start, vol float64, end time.Time) []model.Candle {
	price := start
	out := make([]model.Candle, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := end.AddDate(0, 0, -i)
		drift := (rnd() - 0.5) * vol
		open := price
		cls := math.Max(open*(1+drift), 1)
		high := math.Max(open, cls) * (1 + math.Abs(drift)*0.6)
		low := math.Min(open, cls) * (1 - math.Abs(drift)*0.6)
		price = cls
		out = append(out, model.Candle{
			Date:   d.Format(dateLayout),
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(cls),
			Volume: int64(math.Round(1_000_000 * (1 + rnd()*0.2))),
		})
	}
	return out
}

// Realistic returns days candles with a daily return of drift plus a uniform
// shock in ±volatility/2, never dropping below 1. The last candle is dated
// the day before end.
func Realistic(rnd func() float64, start, drift, volatility float64, days int, end time.Time) []model.Candle {
	out := make([]model.Candle, 0, days)
	price := start
	for i := 0; i < days; i++ {
		ret := drift + (rnd()-0.5)*volatility
		next := math.Max(1, price*(1+ret))

		open := price
		if i > 0 {
			open = out[i-1].Close
		}
		high := math.Max(open, next) * (1 + rnd()*0.02)
		low := math.Min(open, next) * (1 - rnd()*0.02)

		out = append(out, model.Candle{
			Date:   end.AddDate(0, 0, -(days - i)).Format(dateLayout),
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(next),
			Volume: int64(rnd()*1_000_000) + 100_000,
		})
		price = next
	}
	return out
}

// Seeded returns a repeatable close-only series for symbol: the same symbol
// and length always produce the same prices. Start price and volatility are
// derived from the symbol hash.
func Seeded(symbol string, days int, end time.Time) []model.Candle {
	h := hashStr(symbol)
	rng := rand.New(rand.NewSource(int64(hashStr(symbol + ":" + strconv.Itoa(days)))))
	start := 100 + float64(h%50)
	vol := 0.012 + float64(h%7)/1000
	const drift = 0.0002

	price := start
	out := make([]model.Candle, 0, days)
	for i := days - 1; i >= 0; i-- {
		shock := (rng.Float64() - 0.5) * 2 * vol
		price = math.Max(10, price*(1+drift+shock))
		c := round2(price)
		out = append(out, model.Candle{
			Date:  end.AddDate(0, 0, -i).Format(dateLayout),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		})
	}
	return out
}

func hashStr(s string) uint32 {
	f := fnv.New32a()
	f.Write([]byte(s))
	return f.Sum32()
}
