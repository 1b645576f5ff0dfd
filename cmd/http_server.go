package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/auth"
	authPostgres "github.com/frahmantamala/petshop-commerce/internal/auth/postgres"
	"github.com/frahmantamala/petshop-commerce/internal/core/cache"
	"github.com/frahmantamala/petshop-commerce/internal/core/events"
	"github.com/frahmantamala/petshop-commerce/internal/core/metrics"
	"github.com/frahmantamala/petshop-commerce/internal/fee"
	"github.com/frahmantamala/petshop-commerce/internal/financials"
	"github.com/frahmantamala/petshop-commerce/internal/order"
	orderPostgres "github.com/frahmantamala/petshop-commerce/internal/order/postgres"
	"github.com/frahmantamala/petshop-commerce/internal/payment"
	paymentPostgres "github.com/frahmantamala/petshop-commerce/internal/payment/postgres"
	"github.com/frahmantamala/petshop-commerce/internal/product"
	productPostgres "github.com/frahmantamala/petshop-commerce/internal/product/postgres"
	"github.com/frahmantamala/petshop-commerce/internal/report"
	reportPostgres "github.com/frahmantamala/petshop-commerce/internal/report/postgres"
	"github.com/frahmantamala/petshop-commerce/internal/transport"
	"github.com/frahmantamala/petshop-commerce/internal/transport/openapi"
	"github.com/frahmantamala/petshop-commerce/internal/transport/rest"
	"github.com/frahmantamala/petshop-commerce/internal/voucher"
	voucherPostgres "github.com/frahmantamala/petshop-commerce/internal/voucher/postgres"
	"github.com/frahmantamala/petshop-commerce/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config    *internal.Config
	DB        *sqlx.DB
	Gorm      *gorm.DB
	Redis     *redis.Client
	Bus       *events.EventBus
	Forwarder *events.KafkaForwarder
	Metrics   *metrics.Metrics
	Router    *chi.Mux
	Logger    *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.close(ctx)
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

// close drains in-flight event handlers before releasing the connections
// they write to.
func (d *Dependencies) close(ctx context.Context) {
	if err := d.Bus.Wait(ctx); err != nil {
		d.Logger.Warn("Event handlers still running at shutdown", "error", err)
	}
	if d.Forwarder != nil {
		if err := d.Forwarder.Close(); err != nil {
			d.Logger.Error("Kafka writer close error", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	calc, err := fee.NewCalculator(feeConfigFrom(cfg.Fees))
	if err != nil {
		return err
	}
	aggregator := financials.NewAggregator(calc)

	voucherCache := voucher.Cache(cache.Noop[voucher.Voucher]{})
	summaryCache := report.SummaryCache(cache.Noop[report.Summary]{})
	if deps.Redis != nil {
		voucherCache = cache.NewRedisJSON[voucher.Voucher](deps.Redis, "voucher:", cfg.Redis.VoucherTTL, lg)
		summaryCache = cache.NewRedisJSON[report.Summary](deps.Redis, "report:summary:", cfg.Redis.SummaryTTL, lg)
	}

	productService := product.NewService(productPostgres.NewProductRepository(deps.Gorm), lg)
	voucherService := voucher.NewService(voucherPostgres.NewVoucherRepository(deps.Gorm), lg,
		voucher.WithCache(voucherCache),
		voucher.WithPublisher(deps.Bus),
		voucher.WithMetrics(deps.Metrics))
	orderService := order.NewService(orderPostgres.NewOrderRepository(deps.Gorm), productService, voucherService, aggregator, lg,
		order.WithPublisher(deps.Bus),
		order.WithMetrics(deps.Metrics),
		order.WithOrderNumberPrefix(cfg.Store.OrderNumberPrefix))
	paymentService := payment.NewService(paymentPostgres.NewPaymentRepository(deps.Gorm), orderService, deps.Bus, deps.Metrics, lg)
	reportService := report.NewService(reportPostgres.NewReportRepository(deps.DB), aggregator, lg,
		report.WithCache(summaryCache),
		report.WithLocation(cfg.Store.Location()),
		report.WithQueryTimeout(cfg.Store.ReportQueryTimeout))

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration)
	authService := auth.NewService(authPostgres.NewRepository(deps.Gorm), tokenGen, cfg.Security.BCryptCost, lg)

	report.NewEventHandler(reportService, lg).RegisterEventHandlers(deps.Bus)

	routes := rest.Routes{
		DB:             deps.DB.DB,
		Redis:          deps.Redis,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		OpenAPIPath:    cfg.Server.OpenAPIPath,
		Auth:           auth.NewHandler(base, authService),
		Products:       product.NewHandler(base, productService),
		Vouchers:       voucher.NewHandler(base, voucherService),
		Orders:         order.NewHandler(base, orderService),
		Payments:       payment.NewWebhookHandler(base, paymentService),
		Reports:        report.NewHandler(base, reportService),
	}
	if cfg.Observability.Metrics.Enabled {
		routes.Metrics = deps.Metrics
		routes.MetricsPath = cfg.Observability.Metrics.Path
	}
	if cfg.Server.OpenAPIPath != "" {
		doc, err := openapi.Load(context.Background(), cfg.Server.OpenAPIPath)
		if err != nil {
			return err
		}
		validator, err := openapi.NewValidator(doc)
		if err != nil {
			return err
		}
		routes.Validator = validator
	}

	rest.RegisterAllRoutes(deps.Router, routes, lg)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Env)
	if config.Observability.Logging.Format != "" {
		logger.Configure(config.Observability.Logging.Format, config.Observability.Logging.Level)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	deps := &Dependencies{
		Config:  config,
		Logger:  lg,
		DB:      db,
		Gorm:    gdb,
		Bus:     events.NewEventBus(lg),
		Metrics: metrics.New(),
		Router:  chi.NewRouter(),
	}

	if config.Redis.Enabled {
		deps.Redis = cache.NewRedisClient(config.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			// caches degrade to misses; the health endpoint reports the outage
			lg.Warn("redis unreachable at startup", "addr", config.Redis.Addr, "error", err)
		}
	}

	if config.Kafka.Enabled {
		deps.Forwarder = events.NewKafkaForwarder(events.NewKafkaWriter(config.Kafka.Brokers, config.Kafka.Topic), lg)
		deps.Forwarder.Register(deps.Bus)
		lg.Info("forwarding domain events to kafka", "topic", config.Kafka.Topic)
	}

	return deps, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx connection pool with gorm.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}
