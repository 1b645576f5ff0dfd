package voucher_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	voucherDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/voucher"
	"github.com/frahmantamala/petshop-commerce/internal/transport"
	"github.com/frahmantamala/petshop-commerce/internal/voucher"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Voucher Handler", func() {
	var (
		repo   *MockRepository
		router chi.Router
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = NewMockRepository()
		now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
		service := voucher.NewService(repo, slogger, voucher.WithClock(func() time.Time { return now }))
		handler := voucher.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Post("/vouchers/validate", handler.ValidateVoucher)
		router.Post("/admin/vouchers", handler.CreateVoucher)
		router.Get("/admin/vouchers", handler.ListVouchers)
		router.Get("/admin/vouchers/{id}", handler.GetVoucher)
		router.Patch("/admin/vouchers/{id}/active", handler.SetVoucherActive)
		router.Get("/admin/vouchers/{id}/usages", handler.ListUsages)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("returns the discount for an eligible code", func() {
		repo.add(&voucherDatamodel.Voucher{Code: "PAWS10", DiscountType: "fixed", DiscountAmount: 10, IsActive: true})

		w := do(http.MethodPost, "/vouchers/validate", `{"code":"paws10","email":"a@b.com","subtotal":84}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp voucher.ValidateVoucherResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Valid).To(BeTrue())
		Expect(resp.Code).To(Equal("PAWS10"))
		Expect(resp.Discount).To(Equal(10.0))
	})

	It("surfaces the rejection reason and message", func() {
		w := do(http.MethodPost, "/vouchers/validate", `{"code":"NOPE","subtotal":84}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp voucher.ValidateVoucherResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Valid).To(BeFalse())
		Expect(resp.Reason).To(Equal(voucher.ReasonInvalidCode))
		Expect(resp.Message).To(Equal("Invalid voucher code"))
	})

	It("rejects a malformed body", func() {
		w := do(http.MethodPost, "/vouchers/validate", `{"code":`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers 500 when storage fails", func() {
		repo.shouldFail = true
		w := do(http.MethodPost, "/vouchers/validate", `{"code":"ANY","subtotal":10}`)
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).NotTo(ContainSubstring("database unavailable"))
	})

	It("creates, toggles and fetches a voucher", func() {
		w := do(http.MethodPost, "/admin/vouchers", `{"code":"new10","discount_type":"fixed","discount_amount":10}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created voucher.Voucher
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Code).To(Equal("NEW10"))

		w = do(http.MethodPatch, "/admin/vouchers/1/active", `{"is_active":false}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodGet, "/admin/vouchers/1", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var fetched voucher.Voucher
		Expect(json.NewDecoder(w.Body).Decode(&fetched)).To(Succeed())
		Expect(fetched.IsActive).To(BeFalse())

		w = do(http.MethodGet, "/admin/vouchers", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var list voucher.VouchersResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Vouchers).To(HaveLen(1))
	})

	It("returns validation details for a bad create request", func() {
		w := do(http.MethodPost, "/admin/vouchers", `{"code":"ab","discount_type":"bogus"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("VALIDATION_FAILED"))
	})

	It("returns 404 for an unknown voucher and 400 for a bad id", func() {
		Expect(do(http.MethodGet, "/admin/vouchers/77", "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/admin/vouchers/abc", "").Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, "/admin/vouchers/77/usages", "").Code).To(Equal(http.StatusNotFound))
	})
})
