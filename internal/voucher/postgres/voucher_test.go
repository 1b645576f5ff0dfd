package postgres_test

import (
	"context"
	"sync"
	"testing"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	voucherDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/voucher"
	"github.com/frahmantamala/petshop-commerce/internal/voucher"
	voucherPostgres "github.com/frahmantamala/petshop-commerce/internal/voucher/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestVoucherPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Voucher Postgres Suite")
}

func ptrInt(i int64) *int64 { return &i }

var _ = Describe("Voucher PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo voucher.RepositoryAPI
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())

		// every pooled connection would otherwise get its own in-memory database
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		err = db.AutoMigrate(&voucherDatamodel.Voucher{}, &voucherDatamodel.Usage{})
		Expect(err).NotTo(HaveOccurred())

		repo = voucherPostgres.NewVoucherRepository(db)
		ctx = context.Background()
	})

	create := func(code string, limit *int64) *voucherDatamodel.Voucher {
		v := &voucherDatamodel.Voucher{
			Code:           code,
			DiscountType:   "fixed",
			DiscountAmount: 5,
			UsageLimit:     limit,
			IsActive:       true,
		}
		Expect(repo.Create(ctx, v)).To(Succeed())
		return v
	}

	Describe("Create and lookup", func() {
		It("finds a voucher by code regardless of case", func() {
			created := create("WOOF5", nil)

			found, err := repo.GetByCode(ctx, "woof5")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.ID).To(Equal(created.ID))
		})

		It("returns nil for an unknown code", func() {
			found, err := repo.GetByCode(ctx, "MISSING")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})

		It("maps a duplicate code to ErrVoucherCodeTaken", func() {
			create("DUP", nil)

			err := repo.Create(ctx, &voucherDatamodel.Voucher{Code: "DUP", DiscountType: "fixed", DiscountAmount: 1})
			Expect(err).To(Equal(errors.ErrVoucherCodeTaken))
		})

		It("persists an inactive voucher as inactive", func() {
			v := &voucherDatamodel.Voucher{Code: "OFF", DiscountType: "fixed", DiscountAmount: 1, IsActive: false}
			Expect(repo.Create(ctx, v)).To(Succeed())

			found, err := repo.GetByID(ctx, v.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.IsActive).To(BeFalse())
		})
	})

	Describe("SetActive", func() {
		It("toggles the flag in place", func() {
			v := create("FLIP", nil)

			Expect(repo.SetActive(ctx, v.ID, false)).To(Succeed())
			found, err := repo.GetByID(ctx, v.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.IsActive).To(BeFalse())

			all, err := repo.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})
	})

	Describe("Redeem", func() {
		It("never lets times_used pass usage_limit", func() {
			v := create("LIMIT2", ptrInt(2))

			applied, err := repo.Redeem(ctx, v.ID, "a@x.com", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())

			applied, err = repo.Redeem(ctx, v.ID, "b@x.com", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeTrue())

			applied, err = repo.Redeem(ctx, v.ID, "c@x.com", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(applied).To(BeFalse())

			found, err := repo.GetByID(ctx, v.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.TimesUsed).To(Equal(int64(2)))

			used, err := repo.HasUsage(ctx, v.ID, "c@x.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(used).To(BeFalse())
		})

		It("holds the limit under concurrent redemptions", func() {
			v := create("RACE", ptrInt(3))

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				applied int
			)
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					defer GinkgoRecover()
					ok, err := repo.Redeem(ctx, v.ID, voucher.NormalizeEmail(string(rune('a'+i))+"@x.com"), nil)
					Expect(err).NotTo(HaveOccurred())
					if ok {
						mu.Lock()
						applied++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()

			Expect(applied).To(Equal(3))
			found, err := repo.GetByID(ctx, v.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.TimesUsed).To(Equal(int64(3)))
		})

		It("records one usage row per customer", func() {
			v := create("UNLIMITED", nil)
			orderID := int64(42)

			_, err := repo.Redeem(ctx, v.ID, "Jane@Example.com", &orderID)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.Redeem(ctx, v.ID, "jane@example.com", nil)
			Expect(err).NotTo(HaveOccurred())

			usages, err := repo.ListUsages(ctx, v.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(usages).To(HaveLen(1))
			Expect(usages[0].UserEmail).To(Equal("jane@example.com"))
			Expect(*usages[0].OrderID).To(Equal(int64(42)))

			used, err := repo.HasUsage(ctx, v.ID, "JANE@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(used).To(BeTrue())
		})
	})
})
