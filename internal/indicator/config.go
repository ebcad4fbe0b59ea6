package indicator

import "fmt"

// Config selects the periods used by Compute.
type Config struct {
	SMAPeriod  int `json:"smaPeriod" yaml:"sma_period"`
	EMAPeriod  int `json:"emaPeriod" yaml:"ema_period"`
	RSIPeriod  int `json:"rsiPeriod" yaml:"rsi_period"`
	MACDFast   int `json:"macdFast" yaml:"macd_fast"`
	MACDSlow   int `json:"macdSlow" yaml:"macd_slow"`
	MACDSignal int `json:"macdSignal" yaml:"macd_signal"`
}

// DefaultConfig returns the periods shown on the analysis page.
func DefaultConfig() Config {
	return Config{
		SMAPeriod:  20,
		EMAPeriod:  12,
		RSIPeriod:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
	}
}

// WithDefaults fills zero periods from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.SMAPeriod == 0 {
		c.SMAPeriod = d.SMAPeriod
	}
	if c.EMAPeriod == 0 {
		c.EMAPeriod = d.EMAPeriod
	}
	if c.RSIPeriod == 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if c.MACDFast == 0 {
		c.MACDFast = d.MACDFast
	}
	if c.MACDSlow == 0 {
		c.MACDSlow = d.MACDSlow
	}
	if c.MACDSignal == 0 {
		c.MACDSignal = d.MACDSignal
	}
	return c
}

// MaxPeriod bounds every configured period: about forty years of daily bars.
const MaxPeriod = 10_000

// Validate rejects periods outside 1..MaxPeriod and a fast MACD period that
// is not shorter than the slow one.
func (c Config) Validate() error {
	periods := []struct {
		name string
		v    int
	}{
		{"sma period", c.SMAPeriod},
		{"ema period", c.EMAPeriod},
		{"rsi period", c.RSIPeriod},
		{"macd fast", c.MACDFast},
		{"macd slow", c.MACDSlow},
		{"macd signal", c.MACDSignal},
	}
	for _, p := range periods {
		if p.v <= 0 {
			return fmt.Errorf("indicator: %s must be positive, got %d", p.name, p.v)
		}
		if p.v > MaxPeriod {
			return fmt.Errorf("indicator: %s must be at most %d, got %d", p.name, MaxPeriod, p.v)
		}
	}
	if c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("indicator: macd fast (%d) must be below slow (%d)", c.MACDFast, c.MACDSlow)
	}
	return nil
}
