package portfolio

import "errors"

var (
	// ErrInsufficientFunds is returned when cash cannot cover value plus brokerage.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares is returned when selling more than is held.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrInvalidOrder is returned for an empty symbol, unknown side, or a
	// non-positive or non-finite quantity or price.
	ErrInvalidOrder = errors.New("invalid order")
)
