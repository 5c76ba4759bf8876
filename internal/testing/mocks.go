// Package testing provides shared mocks and fixtures for unit tests.
package testing

import (
	"fmt"
	"sync"
	"time"

	"github.com/seetoh/stockdash/internal/domain"
)

// MockProvider is a scriptable market data provider for testing. All fields
// are keyed by symbol or pair; missing keys return an error like a real
// provider failure would.
type MockProvider struct {
	mu           sync.RWMutex
	quotes       map[string]*domain.Quote
	fundamentals map[string]*domain.FundamentalsSnapshot
	histories    map[string]*domain.TechnicalSeries
	fxRates      map[string]*domain.FxRate
	err          error

	QuoteCalls   int
	FxCalls      int
	HistoryCalls int
	FundCalls    int
}

// NewMockProvider creates an empty mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		quotes:       make(map[string]*domain.Quote),
		fundamentals: make(map[string]*domain.FundamentalsSnapshot),
		histories:    make(map[string]*domain.TechnicalSeries),
		fxRates:      make(map[string]*domain.FxRate),
	}
}

// SetQuote registers a quote for a symbol.
func (m *MockProvider) SetQuote(symbol string, price, change, changePct float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[symbol] = &domain.Quote{
		Symbol:    symbol,
		Price:     price,
		Change:    change,
		ChangePct: changePct,
		AsOf:      time.Now().UTC(),
	}
}

// SetFundamentals registers a fundamentals snapshot for a symbol.
func (m *MockProvider) SetFundamentals(f *domain.FundamentalsSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fundamentals[f.Symbol] = f
}

// SetHistory registers a price series for a symbol. The same series is
// returned for every range.
func (m *MockProvider) SetHistory(symbol string, series *domain.TechnicalSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histories[symbol] = series
}

// SetFxRate registers an exchange rate for a pair like "USDSGD".
func (m *MockProvider) SetFxRate(pair string, rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fxRates[pair] = &domain.FxRate{Pair: pair, Rate: rate, AsOf: time.Now().UTC()}
}

// SetError makes every provider call fail with err until cleared.
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetQuote returns the registered quote for symbol.
func (m *MockProvider) GetQuote(symbol string) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuoteCalls++
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("no quote registered for %s", symbol)
	}
	return q, nil
}

// GetFundamentals returns the registered snapshot for symbol.
func (m *MockProvider) GetFundamentals(symbol string) (*domain.FundamentalsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FundCalls++
	if m.err != nil {
		return nil, m.err
	}
	f, ok := m.fundamentals[symbol]
	if !ok {
		return nil, fmt.Errorf("no fundamentals registered for %s", symbol)
	}
	return f, nil
}

// GetHistory returns the registered series for symbol.
func (m *MockProvider) GetHistory(symbol string, rng domain.HistoryRange) (*domain.TechnicalSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HistoryCalls++
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.histories[symbol]
	if !ok {
		return nil, fmt.Errorf("no history registered for %s", symbol)
	}
	return s, nil
}

// GetFxRate returns the registered rate for pair.
func (m *MockProvider) GetFxRate(pair string) (*domain.FxRate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FxCalls++
	if m.err != nil {
		return nil, m.err
	}
	fx, ok := m.fxRates[pair]
	if !ok {
		return nil, fmt.Errorf("no fx rate registered for %s", pair)
	}
	return fx, nil
}

// FixedClock returns a Clock pinned to t.
func FixedClock(t time.Time) domain.Clock {
	return func() time.Time { return t }
}
