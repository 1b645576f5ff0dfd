package fee

import "strings"

type rule struct {
	code  Code
	match func(method string) bool
}

func anyOf(keywords ...string) func(string) bool {
	return func(method string) bool {
		for _, k := range keywords {
			if strings.Contains(method, k) {
				return true
			}
		}
		return false
	}
}

func allOf(keywords ...string) func(string) bool {
	return func(method string) bool {
		for _, k := range keywords {
			if !strings.Contains(method, k) {
				return false
			}
		}
		return true
	}
}

// Order matters: the first matching rule wins.
var classificationRules = []rule{
	{CodeFPX, anyOf("fpx", "online banking")},
	{CodeCard, anyOf("card", "visa", "mastercard")},
	{CodeEWallet, anyOf("tng", "touch", "boost", "ewallet", "e-wallet")},
	{CodeSPayLater, anyOf("spaylater", "shopee")},
	{CodeAtome, anyOf("atome")},
	{CodeGrabPayLater, allOf("grabpay", "later")},
}

// MapPaymentMethodToFeeType classifies a free-form payment method string, as
// entered by staff or reported by the gateway, into a fee schedule code.
func MapPaymentMethodToFeeType(method string) Code {
	m := strings.ToLower(method)
	if m == "" {
		return CodeDefault
	}
	for _, r := range classificationRules {
		if r.match(m) {
			return r.code
		}
	}
	return CodeDefault
}
