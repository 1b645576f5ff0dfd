package voucher_test

import (
	"errors"
	"time"

	"github.com/frahmantamala/petshop-commerce/internal/voucher"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Evaluate", func() {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	notUsed := func() (bool, error) { return false, nil }
	used := func() (bool, error) { return true, nil }

	base := func() *voucher.Voucher {
		return &voucher.Voucher{
			Code:           "PAWS",
			DiscountType:   voucher.DiscountFixed,
			DiscountAmount: 10,
			IsActive:       true,
		}
	}

	DescribeTable("rejection reasons",
		func(mutate func(*voucher.Voucher), lookup voucher.UsageLookup, subtotal float64, reason voucher.Reason, message string) {
			v := base()
			mutate(v)

			res, err := voucher.Evaluate(v, subtotal, lookup, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Eligible).To(BeFalse())
			Expect(res.Discount).To(Equal(0.0))
			Expect(res.Reason).To(Equal(reason))
			Expect(res.Message).To(Equal(message))
		},
		Entry("inactive", func(v *voucher.Voucher) { v.IsActive = false }, voucher.UsageLookup(notUsed), 100.0,
			voucher.ReasonInactive, "This voucher is no longer active"),
		Entry("not yet valid", func(v *voucher.Voucher) { v.StartDate = ptrTime(now.Add(time.Hour)) }, voucher.UsageLookup(notUsed), 100.0,
			voucher.ReasonNotYetValid, "This voucher is not yet valid"),
		Entry("expired", func(v *voucher.Voucher) { v.ExpiryDate = ptrTime(now.Add(-time.Second)) }, voucher.UsageLookup(notUsed), 100.0,
			voucher.ReasonExpired, "This voucher has expired"),
		Entry("usage limit reached", func(v *voucher.Voucher) { v.UsageLimit = ptrInt(3); v.TimesUsed = 3 }, voucher.UsageLookup(notUsed), 100.0,
			voucher.ReasonUsageLimitReached, "This voucher has reached its usage limit"),
		Entry("already used", func(v *voucher.Voucher) { v.OncePerUser = true }, voucher.UsageLookup(used), 100.0,
			voucher.ReasonAlreadyUsed, "You have already used this voucher"),
		Entry("minimum order not met", func(v *voucher.Voucher) { v.MinOrderAmount = ptrFloat(50) }, voucher.UsageLookup(notUsed), 49.99,
			voucher.ReasonMinOrderNotMet, "Minimum order amount of RM50.00 not met"),
	)

	It("reports invalid_code for a missing voucher", func() {
		res, err := voucher.Evaluate(nil, 100, notUsed, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reason).To(Equal(voucher.ReasonInvalidCode))
	})

	It("stops at the first failing check", func() {
		v := base()
		v.IsActive = false
		v.ExpiryDate = ptrTime(now.Add(-time.Hour))
		v.MinOrderAmount = ptrFloat(500)

		res, err := voucher.Evaluate(v, 10, notUsed, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reason).To(Equal(voucher.ReasonInactive))
	})

	It("accepts a voucher on its start instant and at its expiry instant", func() {
		v := base()
		v.StartDate = ptrTime(now)
		v.ExpiryDate = ptrTime(now)

		res, err := voucher.Evaluate(v, 100, notUsed, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Eligible).To(BeTrue())
	})

	It("accepts a subtotal exactly at the minimum", func() {
		v := base()
		v.MinOrderAmount = ptrFloat(50)

		res, err := voucher.Evaluate(v, 50, notUsed, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Eligible).To(BeTrue())
		Expect(res.Discount).To(Equal(10.0))
	})

	It("does not consult usage for an exhausted voucher", func() {
		v := base()
		v.OncePerUser = true
		v.UsageLimit = ptrInt(1)
		v.TimesUsed = 1
		called := false

		res, err := voucher.Evaluate(v, 100, func() (bool, error) { called = true; return false, nil }, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reason).To(Equal(voucher.ReasonUsageLimitReached))
		Expect(called).To(BeFalse())
	})

	It("propagates a usage lookup failure", func() {
		v := base()
		v.OncePerUser = true

		_, err := voucher.Evaluate(v, 100, func() (bool, error) { return false, errors.New("boom") }, now)
		Expect(err).To(MatchError(ContainSubstring("boom")))
	})

	Describe("Discount", func() {
		It("computes a percentage rounded to cents", func() {
			v := &voucher.Voucher{DiscountType: voucher.DiscountPercentage, DiscountAmount: 12.5}
			Expect(v.Discount(33.33)).To(Equal(4.17))
		})

		It("returns zero for an empty cart", func() {
			v := &voucher.Voucher{DiscountType: voucher.DiscountFixed, DiscountAmount: 10}
			Expect(v.Discount(0)).To(Equal(0.0))
		})

		It("never exceeds the subtotal for any voucher", func() {
			for _, subtotal := range []float64{0.01, 1, 9.99, 10, 120, 1000} {
				for _, v := range []*voucher.Voucher{
					{DiscountType: voucher.DiscountFixed, DiscountAmount: 25},
					{DiscountType: voucher.DiscountPercentage, DiscountAmount: 100},
					{DiscountType: voucher.DiscountPercentage, DiscountAmount: 30, MaxDiscount: ptrFloat(20)},
				} {
					d := v.Discount(subtotal)
					Expect(d).To(BeNumerically("<=", subtotal))
					Expect(d).To(BeNumerically(">=", 0))
				}
			}
		})
	})
})
