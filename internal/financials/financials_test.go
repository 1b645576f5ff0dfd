package financials_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/frahmantamala/petshop-commerce/internal/fee"
	"github.com/frahmantamala/petshop-commerce/internal/financials"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFinancials(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Order Financials Suite")
}

var _ = Describe("Aggregator", func() {
	var agg *financials.Aggregator

	BeforeEach(func() {
		agg = financials.NewAggregator(fee.MustNewCalculator(fee.DefaultConfig()))
	})

	Context("e-wallet order", func() {
		It("charges the gateway fee on the total including delivery", func() {
			b := agg.Calculate(financials.OrderInput{
				TotalAmount:   financials.AmountOf(84.00),
				DeliveryFee:   financials.AmountOf(8.00),
				PaymentMethod: "Touch n Go",
			})

			Expect(b.ProductTotal).To(Equal(84.00))
			Expect(b.DeliveryFee).To(Equal(8.00))
			Expect(b.OrderTotal).To(Equal(92.00))
			Expect(b.SenangPayFeeType).To(Equal(fee.CodeEWallet))
			Expect(b.SenangPayFee).To(Equal(1.38))
			Expect(b.SenangPayFeePercentage).To(Equal(0.015))
			Expect(b.SenangPayFeeMinimum).To(Equal(0.65))
			Expect(b.SenangPayFeeCalculatedFrom).To(Equal("percentage"))
			Expect(b.OtherFees).To(Equal(0.0))
			Expect(b.TotalFees).To(Equal(1.38))
			Expect(b.NetEarnings).To(Equal(90.62))
		})
	})

	Context("small order with an unrecognised method", func() {
		It("falls back to the default minimum fee", func() {
			b := agg.Calculate(financials.OrderInput{
				TotalAmount:   financials.AmountOf(5.00),
				DeliveryFee:   financials.AmountOf(8.00),
				PaymentMethod: "Cash",
			})

			Expect(b.OrderTotal).To(Equal(13.00))
			Expect(b.SenangPayFeeType).To(Equal(fee.CodeDefault))
			Expect(b.SenangPayFee).To(Equal(1.00))
			Expect(b.SenangPayFeeCalculatedFrom).To(Equal("minimum"))
			Expect(b.NetEarnings).To(Equal(12.00))
		})
	})

	Context("missing or malformed input", func() {
		It("defaults a missing delivery fee to the table default", func() {
			b := agg.Calculate(financials.OrderInput{TotalAmount: financials.AmountOf(50)})

			Expect(b.DeliveryFee).To(Equal(fee.DefaultDeliveryFee))
			Expect(b.OrderTotal).To(Equal(58.00))
		})

		It("defaults a missing total to zero", func() {
			b := agg.Calculate(financials.OrderInput{})

			Expect(b.ProductTotal).To(Equal(0.0))
			Expect(b.OrderTotal).To(Equal(8.00))
			Expect(b.SenangPayFee).To(Equal(1.00))
			Expect(b.NetEarnings).To(Equal(7.00))
		})

		It("decodes string, numeric and garbage JSON amounts", func() {
			var in financials.OrderInput
			err := json.Unmarshal([]byte(`{"total_amount":"84.00","delivery_fee":"abc","payment_method":"FPX"}`), &in)
			Expect(err).ToNot(HaveOccurred())

			b := agg.Calculate(in)
			Expect(b.ProductTotal).To(Equal(84.00))
			Expect(b.DeliveryFee).To(Equal(fee.DefaultDeliveryFee))
			Expect(b.SenangPayFeeType).To(Equal(fee.CodeFPX))

			err = json.Unmarshal([]byte(`{"total_amount":12.5,"delivery_fee":null}`), &in)
			Expect(err).ToNot(HaveOccurred())
			Expect(in.TotalAmount.Valid).To(BeTrue())
			Expect(in.TotalAmount.Value).To(Equal(12.5))
			Expect(in.DeliveryFee.Valid).To(BeFalse())
		})

		It("treats non-finite numbers as missing", func() {
			b := agg.Calculate(financials.OrderInput{TotalAmount: financials.AmountOf(math.NaN())})
			Expect(b.ProductTotal).To(Equal(0.0))
		})
	})

	Describe("invariants", func() {
		methods := []string{"", "FPX", "Visa", "Boost", "SPayLater", "Atome", "GrabPay Later", "cheque"}
		totals := []float64{0, 0.01, 3.33, 19.90, 42.42, 84, 150.75, 999.99, 4321.05}
		deliveries := []float64{0, 8, 15, 12.5}

		It("keeps orderTotal, totalFees and netEarnings consistent", func() {
			for _, m := range methods {
				for _, t := range totals {
					for _, d := range deliveries {
						b := agg.Calculate(financials.OrderInput{
							TotalAmount:   financials.AmountOf(t),
							DeliveryFee:   financials.AmountOf(d),
							PaymentMethod: m,
						})
						Expect(b.OrderTotal).To(BeNumerically("~", b.ProductTotal+b.DeliveryFee, 1e-9))
						Expect(b.NetEarnings+b.TotalFees).To(BeNumerically("~", b.OrderTotal, 0.01))
						Expect(b.NetEarnings).To(BeNumerically("<=", b.OrderTotal))
						Expect(b.SenangPayFee).To(BeNumerically(">=", b.SenangPayFeeMinimum))
					}
				}
			}
		})

		It("is deterministic for the same order", func() {
			in := financials.OrderInput{TotalAmount: financials.ParseAmount("123.45"), DeliveryFee: financials.AmountOf(8), PaymentMethod: "Mastercard"}
			Expect(agg.Calculate(in)).To(Equal(agg.Calculate(in)))
		})
	})
})

var _ = Describe("Sum", func() {
	It("adds independently rounded breakdowns exactly", func() {
		agg := financials.NewAggregator(fee.MustNewCalculator(fee.DefaultConfig()))
		a := agg.Calculate(financials.OrderInput{TotalAmount: financials.AmountOf(84), DeliveryFee: financials.AmountOf(8), PaymentMethod: "tng"})
		b := agg.Calculate(financials.OrderInput{TotalAmount: financials.AmountOf(5), DeliveryFee: financials.AmountOf(8)})

		totals := financials.Sum(a, b)

		Expect(totals.Orders).To(Equal(2))
		Expect(totals.OrderTotal).To(Equal(105.00))
		Expect(totals.SenangPayFee).To(Equal(2.38))
		Expect(totals.TotalFees).To(Equal(2.38))
		Expect(totals.NetEarnings).To(Equal(102.62))
		Expect(totals.DeliveryFee).To(Equal(16.00))
	})

	It("returns zeros for no orders", func() {
		Expect(financials.Sum()).To(Equal(financials.Totals{}))
	})

	It("avoids float drift when summing many cents", func() {
		breakdowns := make([]financials.Breakdown, 1000)
		for i := range breakdowns {
			breakdowns[i] = financials.Breakdown{NetEarnings: 0.1}
		}
		Expect(financials.Sum(breakdowns...).NetEarnings).To(Equal(100.0))
	})
})

var _ = Describe("Amount", func() {
	type row struct {
		Total financials.Amount `json:"total_amount"`
	}

	decode := func(doc string) financials.Amount {
		var r row
		Expect(json.Unmarshal([]byte(doc), &r)).To(Succeed())
		return r.Total
	}

	It("accepts numbers and numeric strings", func() {
		Expect(decode(`{"total_amount": 92}`)).To(Equal(financials.AmountOf(92)))
		Expect(decode(`{"total_amount": " 92.50 "}`)).To(Equal(financials.AmountOf(92.5)))
	})

	It("decodes null, missing and malformed values as absent", func() {
		Expect(decode(`{"total_amount": null}`).Valid).To(BeFalse())
		Expect(decode(`{}`).Valid).To(BeFalse())
		Expect(decode(`{"total_amount": "abc"}`).Valid).To(BeFalse())
		Expect(decode(`{"total_amount": true}`).Valid).To(BeFalse())
	})

	It("falls back to the default only when absent", func() {
		Expect(financials.ParseAmount("").Or(8)).To(Equal(8.0))
		Expect(financials.AmountOf(0).Or(8)).To(Equal(0.0))
		Expect(financials.AmountOf(math.NaN()).Or(8)).To(Equal(8.0))
		Expect(financials.AmountFromPtr(nil).Or(8)).To(Equal(8.0))
	})
})
