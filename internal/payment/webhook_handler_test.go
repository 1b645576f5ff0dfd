package payment_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/petshop-commerce/internal/payment"
	"github.com/frahmantamala/petshop-commerce/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Webhook Handler", func() {
	var (
		f      *fixture
		router chi.Router
	)

	BeforeEach(func() {
		f = newFixture()
		handler := payment.NewWebhookHandler(&transport.BaseHandler{Logger: f.slogger}, f.service)
		router = chi.NewRouter()
		router.Post("/api/v1/payment/callback", handler.HandlePaymentCallback)
		router.Get("/admin/orders/{id}/payments", handler.ListOrderPayments)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("processes a callback and keeps the raw body", func() {
		placed := f.placeOrder()
		body := fmt.Sprintf(`{"order_number":%q,"status":"success","payment_method":"Touch n Go","gateway_payment_id":"sp-1","extra":"kept"}`, placed.OrderNumber)

		w := do(http.MethodPost, "/api/v1/payment/callback", body)
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp payment.CallbackResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Status).To(Equal("success"))
		Expect(resp.Changed).To(BeTrue())
		Expect(resp.OrderStatus).To(Equal("paid"))

		w = do(http.MethodGet, fmt.Sprintf("/admin/orders/%d/payments", placed.ID), "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"extra":"kept"`))
	})

	It("rejects malformed JSON", func() {
		Expect(do(http.MethodPost, "/api/v1/payment/callback", `{`).Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 404 for unknown orders", func() {
		w := do(http.MethodPost, "/api/v1/payment/callback", `{"order_number":"PS-X","status":"success"}`)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/admin/orders/99/payments", "").Code).To(Equal(http.StatusNotFound))
	})
})
