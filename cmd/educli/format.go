package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Rhymond/go-money"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

const currencyINR = "INR"

// inr formats rupees with the currency's grouping and symbol.
func inr(amount float64) string {
	paise := decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
	return money.New(paise, currencyINR).Display()
}

func pct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

func num(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(w io.Writer, header []any, rows [][]any) error {
	table := tablewriter.NewWriter(w)
	table.Header(header...)
	for _, r := range rows {
		if err := table.Append(r...); err != nil {
			return err
		}
	}
	return table.Render()
}
