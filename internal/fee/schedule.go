package fee

import (
	"errors"
	"fmt"
)

// Code identifies a fee schedule entry.
type Code string

const (
	CodeFPX          Code = "fpx"
	CodeCard         Code = "card"
	CodeEWallet      Code = "ewallet"
	CodeSPayLater    Code = "spaylater"
	CodeAtome        Code = "atome"
	CodeGrabPayLater Code = "grabpay_later"
	CodeDefault      Code = "default"
)

// KnownCodes lists every code in display order.
var KnownCodes = []Code{CodeFPX, CodeCard, CodeEWallet, CodeSPayLater, CodeAtome, CodeGrabPayLater, CodeDefault}

// Entry is one row of the gateway fee schedule.
type Entry struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Minimum    float64 `json:"minimum"`
}

func (e Entry) validate() error {
	if e.Percentage < 0 || e.Percentage > 1 {
		return fmt.Errorf("percentage %v outside [0,1]", e.Percentage)
	}
	if e.Minimum < 0 {
		return fmt.Errorf("minimum %v is negative", e.Minimum)
	}
	return nil
}

type Schedule map[Code]Entry

// DeliveryTable maps Malaysian state names to a flat delivery fee in RM.
type DeliveryTable struct {
	Default float64            `json:"default"`
	States  map[string]float64 `json:"states"`
}

// Config is the immutable input of a Calculator.
type Config struct {
	Schedule Schedule
	Delivery DeliveryTable
}

// DefaultDeliveryFee is the flat fee charged when a state is not in the table.
const DefaultDeliveryFee = 8.00

// DefaultConfig returns the shipped schedule and delivery table. Each call
// returns fresh maps.
func DefaultConfig() Config {
	return Config{
		Schedule: Schedule{
			CodeFPX:          {Name: "FPX Online Banking", Percentage: 0.015, Minimum: 0.65},
			CodeCard:         {Name: "Credit/Debit Card", Percentage: 0.025, Minimum: 0.65},
			CodeEWallet:      {Name: "E-Wallet", Percentage: 0.015, Minimum: 0.65},
			CodeSPayLater:    {Name: "SPayLater", Percentage: 0.025, Minimum: 1.00},
			CodeAtome:        {Name: "Atome", Percentage: 0.055, Minimum: 1.00},
			CodeGrabPayLater: {Name: "GrabPay Later", Percentage: 0.055, Minimum: 1.00},
			CodeDefault:      {Name: "Default", Percentage: 0.025, Minimum: 1.00},
		},
		Delivery: DeliveryTable{
			Default: DefaultDeliveryFee,
			States: map[string]float64{
				"Johor":           8.00,
				"Kedah":           8.00,
				"Kelantan":        8.00,
				"Melaka":          8.00,
				"Negeri Sembilan": 8.00,
				"Pahang":          8.00,
				"Perak":           8.00,
				"Perlis":          8.00,
				"Pulau Pinang":    8.00,
				"Selangor":        8.00,
				"Terengganu":      8.00,
				"Kuala Lumpur":    8.00,
				"Putrajaya":       8.00,
				"Sabah":           15.00,
				"Sarawak":         15.00,
				"Labuan":          15.00,
			},
		},
	}
}

// Validate checks the schedule and delivery invariants.
func (c Config) Validate() error {
	if _, ok := c.Schedule[CodeDefault]; !ok {
		return errors.New("fee schedule must contain a default entry")
	}
	for code, entry := range c.Schedule {
		if err := entry.validate(); err != nil {
			return fmt.Errorf("fee schedule %q: %w", code, err)
		}
	}
	if c.Delivery.Default <= 0 {
		return errors.New("default delivery fee must be positive")
	}
	for state, v := range c.Delivery.States {
		if v <= 0 {
			return fmt.Errorf("delivery fee for %q must be positive", state)
		}
	}
	return nil
}

// Merge overlays overrides onto the receiver and returns the result. A schedule
// override replaces both rates; an empty name or a zero delivery default keeps
// the receiver's value. The receiver is not modified.
func (c Config) Merge(schedule Schedule, delivery DeliveryTable) Config {
	out := Config{
		Schedule: make(Schedule, len(c.Schedule)),
		Delivery: DeliveryTable{Default: c.Delivery.Default, States: make(map[string]float64, len(c.Delivery.States))},
	}
	for code, entry := range c.Schedule {
		out.Schedule[code] = entry
	}
	for code, entry := range schedule {
		base := out.Schedule[code]
		if entry.Name != "" {
			base.Name = entry.Name
		}
		base.Percentage = entry.Percentage
		base.Minimum = entry.Minimum
		out.Schedule[code] = base
	}
	for state, v := range c.Delivery.States {
		out.Delivery.States[state] = v
	}
	if delivery.Default != 0 {
		out.Delivery.Default = delivery.Default
	}
	for state, v := range delivery.States {
		out.Delivery.States[state] = v
	}
	return out
}
