package order_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/petshop-commerce/internal/order"
	"github.com/frahmantamala/petshop-commerce/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Order Handler", func() {
	var (
		f      *fixture
		router chi.Router
	)

	BeforeEach(func() {
		f = newFixture()
		handler := order.NewHandler(&transport.BaseHandler{Logger: f.slogger}, f.service(f.vouchers))

		router = chi.NewRouter()
		router.Post("/checkout", handler.Checkout)
		router.Get("/admin/orders", handler.ListOrders)
		router.Get("/admin/orders/{id}", handler.GetOrder)
		router.Patch("/admin/orders/{id}/status", handler.UpdateOrderStatus)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("creates an order and returns the camelCase breakdown", func() {
		p := f.addProduct("FOOD", 42, 10)
		body := fmt.Sprintf(`{
			"customer_name": "Aisyah",
			"customer_email": "aisyah@example.com",
			"shipping_address": "1 Jalan Kucing",
			"shipping_state": "Selangor",
			"payment_method": "Touch n Go",
			"items": [{"product_id": %d, "quantity": 2}]
		}`, p.ID)

		w := do(http.MethodPost, "/checkout", body)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var resp map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["status"]).To(Equal("pending_payment"))
		fin := resp["financials"].(map[string]interface{})
		Expect(fin["orderTotal"]).To(Equal(92.0))
		Expect(fin["senangPayFee"]).To(Equal(1.38))
		Expect(fin["netEarnings"]).To(Equal(90.62))
	})

	It("rejects an empty cart with 400", func() {
		w := do(http.MethodPost, "/checkout", `{"customer_name":"A","customer_email":"a@b.com","shipping_address":"x","shipping_state":"Johor","items":[]}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("EMPTY_CART"))
	})

	It("lists, fetches and updates orders", func() {
		p := f.addProduct("FOOD", 10, 10)
		body := fmt.Sprintf(`{"customer_name":"A","customer_email":"a@b.com","shipping_address":"x","shipping_state":"Johor","items":[{"product_id":%d,"quantity":1}]}`, p.ID)
		Expect(do(http.MethodPost, "/checkout", body).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodGet, "/admin/orders?status=pending_payment&limit=5", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var list order.OrdersResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Orders).To(HaveLen(1))
		Expect(list.Limit).To(Equal(5))

		Expect(do(http.MethodGet, "/admin/orders/1", "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/admin/orders/42", "").Code).To(Equal(http.StatusNotFound))

		w = do(http.MethodPatch, "/admin/orders/1/status", `{"status":"completed"}`)
		Expect(w.Code).To(Equal(http.StatusConflict))

		w = do(http.MethodPatch, "/admin/orders/1/status", `{"status":"paid"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
	})
})
