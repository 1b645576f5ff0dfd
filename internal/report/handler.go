package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/frahmantamala/petshop-commerce/internal/transport"
)

type ServiceAPI interface {
	Summary(ctx context.Context, p Period) (*Summary, error)
	Drilldown(ctx context.Context, p Period, metric Metric) (*Drilldown, error)
	ExportCSV(ctx context.Context, p Period, out io.Writer) (Window, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func periodFromQuery(r *http.Request) Period {
	q := r.URL.Query()
	return Period{
		Name: PeriodName(q.Get("period")),
		From: q.Get("from"),
		To:   q.Get("to"),
	}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)
	summary, err := h.Service.Summary(r.Context(), period)
	if err != nil {
		h.Logger.Error("GetSummary: service error", "error", err, "period", period.Name)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetDrilldown(w http.ResponseWriter, r *http.Request) {
	metric, err := ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		h.HandleError(w, err)
		return
	}

	period := periodFromQuery(r)
	result, err := h.Service.Drilldown(r.Context(), period, metric)
	if err != nil {
		h.Logger.Error("GetDrilldown: service error", "error", err, "period", period.Name, "metric", metric)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// ExportCSV buffers the export so a failure can still be reported as JSON.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)

	var buf bytes.Buffer
	window, err := h.Service.ExportCSV(r.Context(), period, &buf)
	if err != nil {
		h.Logger.Error("ExportCSV: service error", "error", err, "period", period.Name)
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename(window)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.Logger.Error("ExportCSV: failed to write response", "error", err)
	}
}
