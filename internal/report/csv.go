package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/frahmantamala/petshop-commerce/internal/core/money"
)

var csvHeader = []string{
	"order_number",
	"created_at",
	"status",
	"customer_name",
	"customer_email",
	"payment_method",
	"fee_type",
	"voucher_code",
	"discount",
	"product_total",
	"delivery_fee",
	"order_total",
	"gateway_fee",
	"gateway_fee_percentage",
	"gateway_fee_minimum",
	"gateway_fee_calculated_from",
	"other_fees",
	"total_fees",
	"net_earnings",
}

// ExportCSV writes one row per revenue-bearing order in the period.
func (s *Service) ExportCSV(ctx context.Context, p Period, out io.Writer) (Window, error) {
	w, err := s.Window(p)
	if err != nil {
		return Window{}, err
	}
	lines, err := s.lines(ctx, w)
	if err != nil {
		return Window{}, err
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(csvHeader); err != nil {
		return Window{}, err
	}
	for _, line := range lines {
		b := line.Financials
		record := []string{
			line.OrderNumber,
			line.CreatedAt.Format(time.RFC3339),
			line.Status,
			line.CustomerName,
			line.CustomerEmail,
			line.PaymentMethod,
			string(b.SenangPayFeeType),
			line.VoucherCode,
			money.Format(line.DiscountAmount),
			money.Format(b.ProductTotal),
			money.Format(b.DeliveryFee),
			money.Format(b.OrderTotal),
			money.Format(b.SenangPayFee),
			fmt.Sprintf("%g", b.SenangPayFeePercentage),
			money.Format(b.SenangPayFeeMinimum),
			b.SenangPayFeeCalculatedFrom,
			money.Format(b.OtherFees),
			money.Format(b.TotalFees),
			money.Format(b.NetEarnings),
		}
		if err := cw.Write(record); err != nil {
			return Window{}, err
		}
	}
	cw.Flush()
	return w, cw.Error()
}

// ExportFilename names the download after the window's inclusive dates.
func ExportFilename(w Window) string {
	last := w.End.AddDate(0, 0, -1)
	return fmt.Sprintf("orders_%s_%s.csv", w.Start.Format(dateLayout), last.Format(dateLayout))
}
