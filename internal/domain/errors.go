package domain

import "errors"

// ErrDataUnavailable indicates a provider call failed and no usable cache
// entry exists. It is always wrapped with the failing key so callers can
// report which symbol or pair was affected.
var ErrDataUnavailable = errors.New("data unavailable")

// ErrEmptyPortfolio indicates an aggregation was requested over a portfolio
// with zero total value; weighted metrics are undefined rather than computed.
var ErrEmptyPortfolio = errors.New("portfolio has no valued holdings")
