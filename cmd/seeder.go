package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"time"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/auth"
	authPostgres "github.com/frahmantamala/petshop-commerce/internal/auth/postgres"
	userDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/user"
	"github.com/frahmantamala/petshop-commerce/internal/product"
	productPostgres "github.com/frahmantamala/petshop-commerce/internal/product/postgres"
	"github.com/frahmantamala/petshop-commerce/internal/voucher"
	voucherPostgres "github.com/frahmantamala/petshop-commerce/internal/voucher/postgres"
	"github.com/frahmantamala/petshop-commerce/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with back-office users, a starter catalog and vouchers for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		ctx := context.Background()
		lg := logger.LoggerWrapper()

		if clearData {
			for _, table := range []string{"voucher_usages", "payments", "order_items", "orders", "vouchers", "products", "user_permissions", "permissions", "users"} {
				if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		users := authPostgres.NewRepository(gdb)
		accounts := []struct {
			Email       string
			Name        string
			Permissions []string
		}{
			{"admin@petshop.my", "Store Admin", []string{auth.PermissionAdmin}},
			{"ops@petshop.my", "Operations", []string{auth.PermissionManageOrders, auth.PermissionManageProducts}},
			{"marketing@petshop.my", "Marketing", []string{auth.PermissionManageVouchers, auth.PermissionViewReports}},
		}

		hash, err := auth.HashPassword("password", cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		for _, a := range accounts {
			u := &userDatamodel.User{Email: a.Email, Name: a.Name, PasswordHash: hash, IsActive: true}
			if err := users.UpsertUser(ctx, u); err != nil {
				log.Fatalf("failed to upsert user %s: %v", a.Email, err)
			}
			if err := users.GrantPermissions(ctx, u.ID, a.Permissions...); err != nil {
				log.Fatalf("failed to grant permissions to %s: %v", a.Email, err)
			}
			fmt.Printf("Seeded user %s with %v\n", a.Email, a.Permissions)
		}

		products := product.NewService(productPostgres.NewProductRepository(gdb), lg)
		catalog := []product.ProductRequest{
			{SKU: "FOOD-CAT-2KG", Name: "Grain-Free Cat Kibble 2kg", Category: "food", Price: 42.00, Stock: 120},
			{SKU: "FOOD-DOG-5KG", Name: "Adult Dog Dry Food 5kg", Category: "food", Price: 89.90, Stock: 60},
			{SKU: "TREAT-CAT-TUNA", Name: "Tuna Cat Treats", Category: "treats", Price: 5.00, Stock: 300},
			{SKU: "LITTER-TOFU-7L", Name: "Tofu Cat Litter 7L", Category: "litter", Price: 24.50, Stock: 80},
			{SKU: "TOY-FEATHER", Name: "Feather Wand Toy", Category: "toys", Price: 12.90, Stock: 150},
			{SKU: "GROOM-BRUSH", Name: "Slicker Grooming Brush", Category: "grooming", Price: 18.00, Stock: 45},
		}
		for _, req := range catalog {
			if _, err := products.Create(ctx, req); err != nil {
				if stderrors.Is(err, errors.ErrSKUTaken) {
					continue
				}
				log.Fatalf("failed to seed product %s: %v", req.SKU, err)
			}
			fmt.Println("Seeded product:", req.SKU)
		}

		vouchers := voucher.NewService(voucherPostgres.NewVoucherRepository(gdb), lg)
		now := time.Now()
		expiry := now.AddDate(0, 3, 0)
		maxDiscount := 20.0
		minOrder := 50.0
		limit := int64(100)
		seedVouchers := []voucher.CreateVoucherRequest{
			{Code: "WELCOME10", Description: "RM10 off your first order", DiscountType: voucher.DiscountFixed, DiscountAmount: 10, OncePerUser: true, ExpiryDate: &expiry},
			{Code: "MEOW15", Description: "15% off, up to RM20", DiscountType: voucher.DiscountPercentage, DiscountAmount: 15, MaxDiscount: &maxDiscount, MinOrderAmount: &minOrder, UsageLimit: &limit},
		}
		for _, req := range seedVouchers {
			if _, err := vouchers.Create(ctx, req); err != nil {
				if stderrors.Is(err, errors.ErrVoucherCodeTaken) {
					continue
				}
				log.Fatalf("failed to seed voucher %s: %v", req.Code, err)
			}
			fmt.Println("Seeded voucher:", req.Code)
		}

		fmt.Println("Seeding complete")
	},
}
