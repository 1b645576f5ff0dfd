package report_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/petshop-commerce/internal/core/events"
	"github.com/frahmantamala/petshop-commerce/internal/report"
	"github.com/frahmantamala/petshop-commerce/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Report Handler", func() {
	var (
		f      *reportFixture
		router chi.Router
	)

	BeforeEach(func() {
		f = newReportFixture()
		f.seed()
		handler := report.NewHandler(&transport.BaseHandler{Logger: f.slogger}, f.service)
		router = chi.NewRouter()
		router.Get("/admin/dashboard/summary", handler.GetSummary)
		router.Get("/admin/dashboard/drilldown", handler.GetDrilldown)
		router.Get("/admin/dashboard/export.csv", handler.ExportCSV)
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	It("returns the summary", func() {
		w := get("/admin/dashboard/summary?period=last_7_days")
		Expect(w.Code).To(Equal(http.StatusOK))

		var s report.Summary
		Expect(json.NewDecoder(w.Body).Decode(&s)).To(Succeed())
		Expect(s.Totals.Orders).To(Equal(2))
		Expect(s.Totals.NetEarnings).To(Equal(189.12))
		Expect(s.Daily).To(HaveLen(7))
	})

	It("rejects unknown periods and metrics", func() {
		w := get("/admin/dashboard/summary?period=decade")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_PERIOD"))

		w = get("/admin/dashboard/drilldown?period=today&metric=tips")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_METRIC"))
	})

	It("drills into a metric", func() {
		w := get("/admin/dashboard/drilldown?period=custom&from=2025-03-14&to=2025-03-15&metric=discounts")
		Expect(w.Code).To(Equal(http.StatusOK))
		var d report.Drilldown
		Expect(json.NewDecoder(w.Body).Decode(&d)).To(Succeed())
		Expect(d.Orders).To(HaveLen(1))
		Expect(d.Orders[0].VoucherCode).To(Equal("SAVE10"))
	})

	It("downloads a CSV attachment", func() {
		w := get("/admin/dashboard/export.csv?period=custom&from=2025-03-01&to=2025-03-15")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
		Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("orders_2025-03-01_2025-03-15.csv"))
		Expect(strings.Count(w.Body.String(), "\n")).To(Equal(4))
	})
})

var _ = Describe("Report EventHandler", func() {
	It("purges cached summaries on order events", func() {
		f := newReportFixture()
		bus := events.NewEventBus(f.slogger)
		report.NewEventHandler(f.service, f.slogger).RegisterEventHandlers(bus)

		ctx := context.Background()
		_, err := f.service.Summary(ctx, report.Period{Name: report.PeriodToday})
		Expect(err).NotTo(HaveOccurred())
		Expect(f.cache.items).To(HaveLen(1))

		Expect(bus.Publish(ctx, events.NewOrderStatusChangedEvent(1, "PS-1", "pending_payment", "paid"))).To(Succeed())
		waitCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		Expect(bus.Wait(waitCtx)).To(Succeed())

		Expect(f.cache.purges).To(Equal(1))
		Expect(f.cache.items).To(BeEmpty())

		Expect(bus.Publish(ctx, events.NewVoucherRedeemedEvent(1, "SAVE10", "a@b.com", nil))).To(Succeed())
		Expect(bus.Wait(waitCtx)).To(Succeed())
		Expect(f.cache.purges).To(Equal(1))
	})
})
