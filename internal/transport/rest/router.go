package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/petshop-commerce/internal/auth"
	"github.com/frahmantamala/petshop-commerce/internal/core/metrics"
	"github.com/frahmantamala/petshop-commerce/internal/order"
	"github.com/frahmantamala/petshop-commerce/internal/payment"
	"github.com/frahmantamala/petshop-commerce/internal/product"
	"github.com/frahmantamala/petshop-commerce/internal/report"
	"github.com/frahmantamala/petshop-commerce/internal/transport/middleware"
	"github.com/frahmantamala/petshop-commerce/internal/transport/openapi"
	"github.com/frahmantamala/petshop-commerce/internal/transport/swagger"
	"github.com/frahmantamala/petshop-commerce/internal/voucher"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/redis/go-redis/v9"
)

// Routes collects what RegisterAllRoutes mounts. Nil handlers leave their
// routes unmounted.
type Routes struct {
	DB             *sql.DB
	Redis          *redis.Client
	Metrics        *metrics.Metrics
	MetricsPath    string
	AllowedOrigins string
	OpenAPIPath    string
	Validator      *openapi.Validator

	Auth     *auth.Handler
	Products *product.Handler
	Vouchers *voucher.Handler
	Orders   *order.Handler
	Payments *payment.WebhookHandler
	Reports  *report.Handler
}

func RegisterAllRoutes(router *chi.Mux, rt Routes, logger *slog.Logger) {
	healthHandler := NewHealthHandler(rt.DB, rt.Redis)

	// Apply global middleware
	router.Use(middleware.CORS(rt.AllowedOrigins))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger, rt.Metrics))

	if rt.Metrics != nil && rt.MetricsPath != "" {
		router.Handle(rt.MetricsPath, rt.Metrics.Handler())
	}

	// Serve OpenAPI spec at root (outside API prefix)
	if rt.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, rt.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	// Mount API under /api/v1 to match the OpenAPI paths
	router.Route("/api/v1", func(r chi.Router) {
		if rt.Validator != nil {
			r.Use(rt.Validator.Middleware)
		}

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Storefront routes (no auth required)
		if rt.Products != nil {
			r.Get("/products", rt.Products.GetProducts)
			r.Get("/products/{id}", rt.Products.GetProduct)
		}
		if rt.Vouchers != nil {
			r.Post("/vouchers/validate", rt.Vouchers.ValidateVoucher)
		}
		if rt.Orders != nil {
			r.Post("/checkout", rt.Orders.Checkout)
		}
		if rt.Payments != nil {
			r.Post("/payment/callback", rt.Payments.HandlePaymentCallback)
		}

		if rt.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", rt.Auth.Login)
			sr.Post("/refresh", rt.Auth.RefreshToken)
		})

		// Admin routes require a token, then a permission per area
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(rt.Auth.AuthMiddleware)

			ar.Get("/me", rt.Auth.Me)

			if rt.Products != nil {
				ar.Group(func(pr chi.Router) {
					pr.Use(middleware.RequirePermissions(auth.PermissionManageProducts))
					pr.Get("/products", rt.Products.ListAllProducts)
					pr.Post("/products", rt.Products.CreateProduct)
					pr.Put("/products/{id}", rt.Products.UpdateProduct)
					pr.Patch("/products/{id}/active", rt.Products.SetProductActive)
				})
			}

			if rt.Vouchers != nil {
				ar.Group(func(vr chi.Router) {
					vr.Use(middleware.RequirePermissions(auth.PermissionManageVouchers))
					vr.Get("/vouchers", rt.Vouchers.ListVouchers)
					vr.Post("/vouchers", rt.Vouchers.CreateVoucher)
					vr.Get("/vouchers/{id}", rt.Vouchers.GetVoucher)
					vr.Patch("/vouchers/{id}/active", rt.Vouchers.SetVoucherActive)
					vr.Get("/vouchers/{id}/usages", rt.Vouchers.ListUsages)
				})
			}

			ar.Group(func(or chi.Router) {
				or.Use(middleware.RequirePermissions(auth.PermissionManageOrders))
				if rt.Orders != nil {
					or.Get("/orders", rt.Orders.ListOrders)
					or.Get("/orders/{id}", rt.Orders.GetOrder)
					or.Patch("/orders/{id}/status", rt.Orders.UpdateOrderStatus)
				}
				if rt.Payments != nil {
					or.Get("/orders/{id}/payments", rt.Payments.ListOrderPayments)
				}
			})

			if rt.Reports != nil {
				ar.Group(func(dr chi.Router) {
					dr.Use(middleware.RequirePermissions(auth.PermissionViewReports))
					dr.Get("/dashboard/summary", rt.Reports.GetSummary)
					dr.Get("/dashboard/drilldown", rt.Reports.GetDrilldown)
					dr.Get("/dashboard/export.csv", rt.Reports.ExportCSV)
				})
			}
		})
	})
}
