package report_test

import (
	"testing"
	"time"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/report"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestReport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Suite")
}

var myt = time.FixedZone("MYT", 8*60*60)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, myt)
}

var _ = Describe("Period", func() {
	// 04:00 UTC is already noon in Kuala Lumpur
	now := time.Date(2025, 3, 15, 4, 0, 0, 0, time.UTC)

	DescribeTable("resolves named periods in the store time zone",
		func(name report.PeriodName, start, end time.Time) {
			w, err := report.Period{Name: name}.Resolve(now, myt)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Start.Equal(start)).To(BeTrue(), "start %s", w.Start)
			Expect(w.End.Equal(end)).To(BeTrue(), "end %s", w.End)
		},
		Entry("today", report.PeriodToday, date(2025, 3, 15, 0, 0), date(2025, 3, 16, 0, 0)),
		Entry("empty defaults to today", report.PeriodName(""), date(2025, 3, 15, 0, 0), date(2025, 3, 16, 0, 0)),
		Entry("yesterday", report.PeriodYesterday, date(2025, 3, 14, 0, 0), date(2025, 3, 15, 0, 0)),
		Entry("last 7 days includes today", report.PeriodLast7Days, date(2025, 3, 9, 0, 0), date(2025, 3, 16, 0, 0)),
		Entry("this month", report.PeriodThisMonth, date(2025, 3, 1, 0, 0), date(2025, 4, 1, 0, 0)),
		Entry("last month", report.PeriodLastMonth, date(2025, 2, 1, 0, 0), date(2025, 3, 1, 0, 0)),
	)

	It("uses the store day, not the UTC day", func() {
		lateUTC := time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)
		w, err := report.Period{Name: report.PeriodToday}.Resolve(lateUTC, myt)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Start.Equal(date(2025, 3, 15, 0, 0))).To(BeTrue())
	})

	It("treats custom dates as inclusive", func() {
		w, err := report.Period{Name: report.PeriodCustom, From: "2025-02-28", To: "2025-03-01"}.Resolve(now, myt)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Start.Equal(date(2025, 2, 28, 0, 0))).To(BeTrue())
		Expect(w.End.Equal(date(2025, 3, 2, 0, 0))).To(BeTrue())
		Expect(w.Days()).To(Equal([]string{"2025-02-28", "2025-03-01"}))
		Expect(w.Contains(date(2025, 3, 1, 23, 59))).To(BeTrue())
		Expect(w.Contains(date(2025, 3, 2, 0, 0))).To(BeFalse())
		Expect(report.ExportFilename(w)).To(Equal("orders_2025-02-28_2025-03-01.csv"))
	})

	DescribeTable("rejects invalid periods",
		func(p report.Period) {
			_, err := p.Resolve(now, myt)
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodeInvalidPeriod))
		},
		Entry("unknown name", report.Period{Name: "fortnight"}),
		Entry("bad from", report.Period{Name: report.PeriodCustom, From: "15/03/2025", To: "2025-03-15"}),
		Entry("missing to", report.Period{Name: report.PeriodCustom, From: "2025-03-15"}),
		Entry("reversed", report.Period{Name: report.PeriodCustom, From: "2025-03-15", To: "2025-03-01"}),
		Entry("too long", report.Period{Name: report.PeriodCustom, From: "2023-01-01", To: "2025-03-01"}),
	)
})
