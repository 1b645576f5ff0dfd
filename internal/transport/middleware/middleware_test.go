package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/petshop-commerce/internal/auth"
	"github.com/frahmantamala/petshop-commerce/internal/core/metrics"
	"github.com/frahmantamala/petshop-commerce/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("RequestID", func() {
	It("generates a trace id and stores it in the context", func() {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = logger.TraceID(r.Context())
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(seen).NotTo(BeEmpty())
		Expect(w.Header().Get(TraceHeader)).To(Equal(seen))
	})
})

var _ = Describe("RequirePermissions", func() {
	serve := func(u *auth.User) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if u != nil {
			req = req.WithContext(auth.WithUser(req.Context(), u))
		}
		w := httptest.NewRecorder()
		RequirePermissions(auth.PermissionViewReports, auth.PermissionManageOrders)(ok).ServeHTTP(w, req)
		return w.Code
	}

	It("rejects anonymous requests", func() {
		Expect(serve(nil)).To(Equal(http.StatusUnauthorized))
	})

	It("accepts any one of the listed permissions", func() {
		Expect(serve(&auth.User{ID: 1, Permissions: []string{auth.PermissionManageOrders}})).To(Equal(http.StatusOK))
	})

	It("treats admin as holding every permission", func() {
		Expect(serve(&auth.User{ID: 1, Permissions: []string{auth.PermissionAdmin}})).To(Equal(http.StatusOK))
	})

	It("forbids users without a listed permission", func() {
		Expect(serve(&auth.User{ID: 1, Permissions: []string{auth.PermissionManageProducts}})).To(Equal(http.StatusForbidden))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("filters credentials and records metrics", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewTextHandler(&buf, nil))
		m := metrics.New()

		h := LoggingMiddleware(lg, m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"access_token":"abc.def"}`))
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"email":"a@b.my","password":"hunter2"}`))
		req.Header.Set("Authorization", "Bearer xyz")
		h.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		Expect(out).NotTo(ContainSubstring("hunter2"))
		Expect(out).NotTo(ContainSubstring("abc.def"))
		Expect(out).NotTo(ContainSubstring("xyz"))
		Expect(out).To(ContainSubstring("level=WARN"))
		Expect(testutil.GatherAndCount(m.Registry(), "petshop_http_requests_total")).To(Equal(1))
	})

	It("masks customer contact details and skips non-JSON bodies", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewTextHandler(&buf, nil))

		h := LoggingMiddleware(lg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			Expect(string(body)).To(ContainSubstring("0123456789"))
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("order_number,customer_email\nPS-1,aisyah@example.com\n"))
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout",
			strings.NewReader(`{"customer_name":"Aisyah","customer_phone":"0123456789","shipping_address":"1 Jalan Kucing"}`))
		h.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		Expect(out).To(ContainSubstring("Aisyah"))
		Expect(out).NotTo(ContainSubstring("0123456789"))
		Expect(out).NotTo(ContainSubstring("Jalan Kucing"))
		Expect(out).NotTo(ContainSubstring("aisyah@example.com"))
	})
})

var _ = Describe("CORS", func() {
	It("does not echo unknown origins", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		CORS("https://shop.example.com")(ok).ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("allows any origin with a wildcard", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://anywhere.example.com")
		w := httptest.NewRecorder()
		CORS("*")(ok).ServeHTTP(w, req)
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})
})
