package postgres_test

import (
	"context"
	"encoding/json"
	"testing"

	paymentDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/payment"
	"github.com/frahmantamala/petshop-commerce/internal/payment"
	paymentPostgres "github.com/frahmantamala/petshop-commerce/internal/payment/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPaymentPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payment Postgres Suite")
}

func ptrString(s string) *string { return &s }

var _ = Describe("Payment PostgreSQL Repository", func() {
	var (
		repo payment.RepositoryAPI
		ctx  context.Context
	)

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&paymentDatamodel.Payment{})).To(Succeed())

		repo = paymentPostgres.NewPaymentRepository(db)
		ctx = context.Background()
	})

	It("keeps the callback body verbatim, including unknown fields", func() {
		raw := json.RawMessage(`{"order_number":"PS-1","status":"paid","extra":{"kept":true}}`)
		p := &paymentDatamodel.Payment{
			OrderID:          1,
			OrderNumber:      "PS-1",
			GatewayPaymentID: "gw-123",
			Status:           "paid",
			ExternalStatus:   "paid",
			PaymentMethod:    ptrString("FPX"),
			GatewayResponse:  raw,
		}
		Expect(repo.Create(ctx, p)).To(Succeed())
		Expect(p.ID).NotTo(BeZero())

		rows, err := repo.ListByOrderID(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].GatewayResponse).To(MatchJSON(raw))
		Expect(*rows[0].PaymentMethod).To(Equal("FPX"))
	})

	It("lists only the order's callbacks in arrival order", func() {
		for _, st := range []string{"failed", "paid"} {
			Expect(repo.Create(ctx, &paymentDatamodel.Payment{OrderID: 7, OrderNumber: "PS-7", Status: st})).To(Succeed())
		}
		Expect(repo.Create(ctx, &paymentDatamodel.Payment{OrderID: 8, OrderNumber: "PS-8", Status: "paid"})).To(Succeed())

		rows, err := repo.ListByOrderID(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Status).To(Equal("failed"))
		Expect(rows[1].Status).To(Equal("paid"))
	})
})
