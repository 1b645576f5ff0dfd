package fee

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/petshop-commerce/internal/core/money"
)

const (
	CalculatedFromPercentage = "percentage"
	CalculatedFromMinimum    = "minimum"
)

// Result is the gateway fee charged on one amount.
type Result struct {
	Fee            float64 `json:"fee"`
	FeeType        Code    `json:"feeType"`
	FeeName        string  `json:"feeName"`
	Percentage     float64 `json:"percentage"`
	Minimum        float64 `json:"minimum"`
	CalculatedFrom string  `json:"calculatedFrom"`
}

// Calculator computes gateway and delivery fees from an injected Config. It
// holds private copies of the tables and is safe for concurrent use.
type Calculator struct {
	schedule Schedule
	delivery DeliveryTable
}

func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fee config: %w", err)
	}
	merged := Config{Schedule: Schedule{}, Delivery: DeliveryTable{}}.Merge(cfg.Schedule, cfg.Delivery)
	return &Calculator{schedule: merged.Schedule, delivery: merged.Delivery}, nil
}

// MustNewCalculator panics on an invalid config. Intended for DefaultConfig and tests.
func MustNewCalculator(cfg Config) *Calculator {
	c, err := NewCalculator(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve returns the schedule entry for code, falling back to default for
// unknown or empty codes.
func (c *Calculator) Resolve(code string) (Code, Entry) {
	key := Code(strings.ToLower(strings.TrimSpace(code)))
	if entry, ok := c.schedule[key]; ok {
		return key, entry
	}
	return CodeDefault, c.schedule[CodeDefault]
}

// CalculateFee charges max(amount × percentage, minimum), rounded to cents.
func (c *Calculator) CalculateFee(amount float64, code string) Result {
	feeType, entry := c.Resolve(code)

	percentageFee := amount * entry.Percentage
	fee := entry.Minimum
	calculatedFrom := CalculatedFromMinimum
	if percentageFee >= entry.Minimum {
		fee = percentageFee
		calculatedFrom = CalculatedFromPercentage
	}

	return Result{
		Fee:            money.Round2(fee),
		FeeType:        feeType,
		FeeName:        entry.Name,
		Percentage:     entry.Percentage,
		Minimum:        entry.Minimum,
		CalculatedFrom: calculatedFrom,
	}
}

// DeliveryFee looks the state up by exact, case-sensitive name.
func (c *Calculator) DeliveryFee(state string) float64 {
	if v, ok := c.delivery.States[state]; ok {
		return v
	}
	return c.delivery.Default
}

// KnownState reports whether state has its own delivery fee row.
func (c *Calculator) KnownState(state string) bool {
	_, ok := c.delivery.States[state]
	return ok
}

func (c *Calculator) DefaultDeliveryFee() float64 {
	return c.delivery.Default
}

// Schedule returns a copy of the effective schedule.
func (c *Calculator) Schedule() Schedule {
	out := make(Schedule, len(c.schedule))
	for k, v := range c.schedule {
		out[k] = v
	}
	return out
}

// Delivery returns a copy of the effective delivery table.
func (c *Calculator) Delivery() DeliveryTable {
	out := DeliveryTable{Default: c.delivery.Default, States: make(map[string]float64, len(c.delivery.States))}
	for k, v := range c.delivery.States {
		out.States[k] = v
	}
	return out
}
