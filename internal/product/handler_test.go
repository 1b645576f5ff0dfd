package product_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/petshop-commerce/internal/product"
	productPostgres "github.com/frahmantamala/petshop-commerce/internal/product/postgres"
	"github.com/frahmantamala/petshop-commerce/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Product Handler Integration", func() {
	var (
		service *product.Service
		router  chi.Router
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = product.NewService(productPostgres.NewProductRepository(newTestDB()), slogger)
		handler := product.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/products", handler.GetProducts)
		router.Get("/products/{id}", handler.GetProduct)
		router.Get("/admin/products", handler.ListAllProducts)
		router.Post("/admin/products", handler.CreateProduct)
		router.Put("/admin/products/{id}", handler.UpdateProduct)
		router.Patch("/admin/products/{id}/active", handler.SetProductActive)

		ctx := context.Background()
		_, err := service.Create(ctx, product.ProductRequest{SKU: "KIBBLE", Name: "Dog Kibble 3kg", Category: "dog food", Price: 58.9, Stock: 20})
		Expect(err).NotTo(HaveOccurred())
		hidden, err := service.Create(ctx, product.ProductRequest{SKU: "OLD-TOY", Name: "Old Toy", Price: 5, Stock: 1})
		Expect(err).NotTo(HaveOccurred())
		_, err = service.SetActive(ctx, hidden.ID, false)
		Expect(err).NotTo(HaveOccurred())
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("lists only active products publicly", func() {
		w := do(http.MethodGet, "/products", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var resp product.ProductsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Products).To(HaveLen(1))
		Expect(resp.Products[0].SKU).To(Equal("KIBBLE"))
	})

	It("hides inactive products from the public detail route", func() {
		Expect(do(http.MethodGet, "/products/1", "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/products/2", "").Code).To(Equal(http.StatusNotFound))
	})

	It("lists every product for admins", func() {
		w := do(http.MethodGet, "/admin/products", "")
		var resp product.ProductsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Products).To(HaveLen(2))
	})

	It("creates and updates a product", func() {
		w := do(http.MethodPost, "/admin/products", `{"sku":"litter","name":"Clumping Litter","price":25,"stock":8}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created product.Product
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.SKU).To(Equal("LITTER"))

		w = do(http.MethodPut, "/admin/products/3", `{"sku":"LITTER","name":"Clumping Litter 10L","price":27.5,"stock":8}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		var updated product.Product
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(updated.Price).To(Equal(27.5))
	})

	It("answers 409 for a duplicate sku", func() {
		w := do(http.MethodPost, "/admin/products", `{"sku":"kibble","name":"Dup","price":1,"stock":1}`)
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("SKU_TAKEN"))
	})

	It("reactivates a product", func() {
		w := do(http.MethodPatch, "/admin/products/2/active", `{"is_active":true}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/products/2", "").Code).To(Equal(http.StatusOK))
	})
})
