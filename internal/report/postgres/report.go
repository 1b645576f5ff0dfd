package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/petshop-commerce/internal/report"
	"github.com/jmoiron/sqlx"
)

const ordersInWindowQuery = `
SELECT id, order_number, customer_name, customer_email, status, discount_amount,
       voucher_code, total_amount, delivery_fee, payment_method, created_at
FROM orders
WHERE status IN (?) AND created_at >= ? AND created_at < ?
ORDER BY created_at ASC, id ASC`

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) OrdersBetween(ctx context.Context, statuses []string, start, end time.Time) ([]report.OrderRow, error) {
	query, args, err := sqlx.In(ordersInWindowQuery, statuses, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("build report query: %w", err)
	}

	var rows []report.OrderRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select report orders: %w", err)
	}
	return rows, nil
}
