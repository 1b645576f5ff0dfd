package voucher

import (
	"fmt"
	"time"
)

// Reason identifies why a voucher was rejected. Each reason has its own
// customer-facing message.
type Reason string

const (
	ReasonInvalidCode       Reason = "invalid_code"
	ReasonInactive          Reason = "inactive"
	ReasonNotYetValid       Reason = "not_yet_valid"
	ReasonExpired           Reason = "expired"
	ReasonUsageLimitReached Reason = "usage_limit_reached"
	ReasonAlreadyUsed       Reason = "already_used"
	ReasonMinOrderNotMet    Reason = "min_order_not_met"
	// ReasonEmailRequired is returned when a once-per-user voucher is checked
	// without an email, so the usage check cannot run.
	ReasonEmailRequired Reason = "email_required"
)

var reasonMessages = map[Reason]string{
	ReasonInvalidCode:       "Invalid voucher code",
	ReasonInactive:          "This voucher is no longer active",
	ReasonNotYetValid:       "This voucher is not yet valid",
	ReasonExpired:           "This voucher has expired",
	ReasonUsageLimitReached: "This voucher has reached its usage limit",
	ReasonAlreadyUsed:       "You have already used this voucher",
	ReasonMinOrderNotMet:    "Minimum order amount not met",
	ReasonEmailRequired:     "Enter your email to use this voucher",
}

func (r Reason) Message() string {
	return reasonMessages[r]
}

// Resolution is the outcome of checking a voucher against a cart.
type Resolution struct {
	Eligible bool     `json:"eligible"`
	Discount float64  `json:"discount"`
	Reason   Reason   `json:"reason,omitempty"`
	Message  string   `json:"message,omitempty"`
	Voucher  *Voucher `json:"-"`
}

func reject(v *Voucher, reason Reason) Resolution {
	return Resolution{Reason: reason, Message: reason.Message(), Voucher: v}
}

// UsageLookup reports whether the current customer already redeemed the voucher.
type UsageLookup func() (bool, error)

// Evaluate runs the eligibility chain on a voucher that was found, stopping at
// the first failure: active, started, not expired, usage left, not already
// used by this customer (once-per-user only), minimum order met. The usage
// lookup is only called when the earlier checks pass. An error is returned only
// when the lookup fails.
func Evaluate(v *Voucher, subtotal float64, alreadyUsed UsageLookup, now time.Time) (Resolution, error) {
	if v == nil {
		return reject(nil, ReasonInvalidCode), nil
	}
	if !v.IsActive {
		return reject(v, ReasonInactive), nil
	}
	if !v.HasStarted(now) {
		return reject(v, ReasonNotYetValid), nil
	}
	if v.HasExpired(now) {
		return reject(v, ReasonExpired), nil
	}
	if v.UsageExhausted() {
		return reject(v, ReasonUsageLimitReached), nil
	}
	if v.OncePerUser && alreadyUsed != nil {
		used, err := alreadyUsed()
		if err != nil {
			return Resolution{}, fmt.Errorf("check voucher usage: %w", err)
		}
		if used {
			return reject(v, ReasonAlreadyUsed), nil
		}
	}
	if !v.MeetsMinimum(subtotal) {
		res := reject(v, ReasonMinOrderNotMet)
		res.Message = fmt.Sprintf("Minimum order amount of RM%.2f not met", *v.MinOrderAmount)
		return res, nil
	}

	return Resolution{
		Eligible: true,
		Discount: v.Discount(subtotal),
		Voucher:  v,
	}, nil
}
