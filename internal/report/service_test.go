package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"time"

	orderDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/order"
	"github.com/frahmantamala/petshop-commerce/internal/fee"
	"github.com/frahmantamala/petshop-commerce/internal/financials"
	"github.com/frahmantamala/petshop-commerce/internal/report"
	reportPostgres "github.com/frahmantamala/petshop-commerce/internal/report/postgres"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryCache is a map-backed SummaryCache.
type MemoryCache struct {
	items  map[string]*report.Summary
	purges int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: map[string]*report.Summary{}}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*report.Summary, error) {
	return c.items[key], nil
}

func (c *MemoryCache) Set(_ context.Context, key string, s *report.Summary) error {
	c.items[key] = s
	return nil
}

func (c *MemoryCache) Purge(context.Context) error {
	c.purges++
	c.items = map[string]*report.Summary{}
	return nil
}

type reportFixture struct {
	gdb     *gorm.DB
	db      *sqlx.DB
	cache   *MemoryCache
	service *report.Service
	slogger *slog.Logger
}

func ptrF(f float64) *float64 { return &f }

func ptrS(s string) *string { return &s }

func newReportFixture() *reportFixture {
	db, err := sqlx.Open("sqlite3", ":memory:")
	Expect(err).NotTo(HaveOccurred())
	db.SetMaxOpenConns(1)

	gdb, err := gorm.Open(sqlite.New(sqlite.Config{Conn: db.DB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())
	Expect(gdb.AutoMigrate(&orderDatamodel.Order{}, &orderDatamodel.OrderItem{})).To(Succeed())

	f := &reportFixture{
		gdb:     gdb,
		db:      db,
		cache:   NewMemoryCache(),
		slogger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})),
	}
	f.service = report.NewService(
		reportPostgres.NewReportRepository(db),
		financials.NewAggregator(fee.MustNewCalculator(fee.DefaultConfig())),
		f.slogger,
		report.WithCache(f.cache),
		report.WithLocation(myt),
		report.WithQueryTimeout(5*time.Second),
		report.WithClock(func() time.Time { return date(2025, 3, 15, 12, 0) }),
	)
	return f
}

func (f *reportFixture) add(number, status string, created time.Time, total, delivery *float64, method *string, discount float64, code *string) {
	o := &orderDatamodel.Order{
		OrderNumber:    number,
		CustomerName:   "Customer " + number,
		CustomerEmail:  number + "@example.com",
		Subtotal:       discount,
		DiscountAmount: discount,
		VoucherCode:    code,
		TotalAmount:    total,
		DeliveryFee:    delivery,
		PaymentMethod:  method,
		Status:         status,
		CreatedAt:      created.UTC(),
	}
	if total != nil {
		o.Subtotal = *total + discount
	}
	Expect(f.gdb.Create(o).Error).To(Succeed())
}

// seed lays out orders around "now" = 2025-03-15 12:00 MYT.
func (f *reportFixture) seed() {
	f.add("A", "paid", date(2025, 3, 15, 10, 0), ptrF(84), ptrF(8), ptrS("Touch n Go"), 0, nil)
	f.add("B", "completed", date(2025, 3, 14, 23, 30), ptrF(92), ptrF(8), ptrS("FPX"), 10, ptrS("SAVE10"))
	f.add("C", "pending_payment", date(2025, 3, 15, 9, 0), ptrF(500), ptrF(8), nil, 0, nil)
	f.add("D", "cancelled", date(2025, 3, 15, 9, 30), ptrF(500), ptrF(8), ptrS("FPX"), 0, nil)
	f.add("E", "shipped", date(2025, 3, 1, 0, 0), nil, nil, nil, 0, nil)
	f.add("F", "paid", date(2025, 2, 28, 23, 59), ptrF(40), ptrF(8), ptrS("Credit Card"), 0, nil)
}

var _ = Describe("Report Service", func() {
	var (
		f   *reportFixture
		ctx context.Context
	)

	BeforeEach(func() {
		f = newReportFixture()
		f.seed()
		ctx = context.Background()
	})

	Describe("Summary", func() {
		It("counts only revenue-bearing orders created today", func() {
			s, err := f.service.Summary(ctx, report.Period{Name: report.PeriodToday})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Totals.Orders).To(Equal(1))
			Expect(s.Totals.OrderTotal).To(Equal(92.00))
			Expect(s.Totals.SenangPayFee).To(Equal(1.38))
			Expect(s.Totals.NetEarnings).To(Equal(90.62))
			Expect(s.Daily).To(HaveLen(1))
		})

		It("puts late-evening orders on the store day", func() {
			s, err := f.service.Summary(ctx, report.Period{Name: report.PeriodYesterday})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Totals.Orders).To(Equal(1))
			Expect(s.Totals.OrderTotal).To(Equal(100.00))
			Expect(s.Totals.SenangPayFee).To(Equal(1.50))
			Expect(s.Discounts).To(Equal(10.00))
		})

		It("sums a month with legacy rows and splits by fee type", func() {
			s, err := f.service.Summary(ctx, report.Period{Name: report.PeriodThisMonth})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Totals.Orders).To(Equal(3))
			Expect(s.Totals.OrderTotal).To(Equal(200.00))
			Expect(s.Totals.TotalFees).To(Equal(3.88))
			Expect(s.Totals.NetEarnings).To(Equal(196.12))
			Expect(s.Daily).To(HaveLen(31))

			var codes []fee.Code
			for _, t := range s.ByFeeType {
				codes = append(codes, t.FeeType)
			}
			Expect(codes).To(Equal([]fee.Code{fee.CodeDefault, fee.CodeEWallet, fee.CodeFPX}))
			Expect(s.ByFeeType[0].Totals.SenangPayFee).To(Equal(1.00))
		})

		It("keeps last month separate", func() {
			s, err := f.service.Summary(ctx, report.Period{Name: report.PeriodLastMonth})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Totals.Orders).To(Equal(1))
			Expect(s.Totals.SenangPayFee).To(Equal(1.20))
			Expect(s.Totals.NetEarnings).To(Equal(46.80))
		})

		It("serves repeated requests from the cache until invalidated", func() {
			_, err := f.service.Summary(ctx, report.Period{Name: report.PeriodToday})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.cache.items).To(HaveLen(1))

			f.add("G", "paid", date(2025, 3, 15, 11, 0), ptrF(10), ptrF(8), ptrS("FPX"), 0, nil)
			s, err := f.service.Summary(ctx, report.Period{Name: report.PeriodToday})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Totals.Orders).To(Equal(1))

			Expect(f.service.Invalidate(ctx)).To(Succeed())
			s, err = f.service.Summary(ctx, report.Period{Name: report.PeriodToday})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Totals.Orders).To(Equal(2))
		})
	})

	Describe("Drilldown", func() {
		DescribeTable("totals match the summary for the same window",
			func(metric report.Metric, count int, total float64) {
				d, err := f.service.Drilldown(ctx, report.Period{Name: report.PeriodThisMonth}, metric)
				Expect(err).NotTo(HaveOccurred())
				Expect(d.Orders).To(HaveLen(count))
				Expect(d.Total).To(Equal(total))
			},
			Entry("orders", report.MetricOrders, 3, 3.0),
			Entry("net earnings", report.MetricNetEarnings, 3, 196.12),
			Entry("fees", report.MetricFees, 3, 3.88),
			Entry("delivery", report.MetricDelivery, 3, 24.00),
			Entry("discounts", report.MetricDiscounts, 1, 10.00),
		)

		It("returns each order with its breakdown", func() {
			d, err := f.service.Drilldown(ctx, report.Period{Name: report.PeriodCustom, From: "2025-03-01", To: "2025-03-01"}, report.MetricOrders)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Orders).To(HaveLen(1))
			line := d.Orders[0]
			Expect(line.OrderNumber).To(Equal("E"))
			Expect(line.Financials.ProductTotal).To(Equal(0.0))
			Expect(line.Financials.DeliveryFee).To(Equal(8.00))
			Expect(line.Financials.SenangPayFeeCalculatedFrom).To(Equal(fee.CalculatedFromMinimum))
		})
	})

	Describe("ExportCSV", func() {
		It("writes a header and one row per order", func() {
			var buf bytes.Buffer
			w, err := f.service.ExportCSV(ctx, report.Period{Name: report.PeriodLast7Days}, &buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Period).To(Equal(report.PeriodLast7Days))

			records, err := csv.NewReader(&buf).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(3))
			Expect(records[0][0]).To(Equal("order_number"))
			Expect(records[1][0]).To(Equal("B"))
			Expect(records[1][7]).To(Equal("SAVE10"))
			Expect(records[1][8]).To(Equal("10.00"))
			Expect(records[2][0]).To(Equal("A"))
			Expect(records[2][6]).To(Equal("ewallet"))
			Expect(records[2][12]).To(Equal("1.38"))
			Expect(records[2][18]).To(Equal("90.62"))
		})
	})
})
