package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/lease-extractor/internal/common"
	"github.com/joseph-ayodele/lease-extractor/internal/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// listExtractions handles GET /extractions?limit=&from=&to=
func (h *handlers) listExtractions(w http.ResponseWriter, r *http.Request) {
	logger := common.LoggerFromContext(r.Context(), h.logger)
	q := r.URL.Query()

	filter := repository.ListFilter{}
	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeAppError(w, common.InvalidInputError("limit must be a positive integer"))
			return
		}
		filter.Limit = n
	}
	from, to, err := parseDateWindow(q.Get("from"), q.Get("to"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	filter.From = from
	if to != nil {
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	rows, err := h.history.List(r.Context(), filter)
	if err != nil {
		logger.Error("history.list.failed", "error", err)
		writeAppError(w, err)
		return
	}
	writeData(w, rows)
}

// getExtraction handles GET /extractions/{id}
func (h *handlers) getExtraction(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	if v := common.NewValidator().Field("id", idParam, common.UUID); v.HasErrors() {
		writeAppError(w, v.Error())
		return
	}
	id := uuid.MustParse(idParam)

	e, err := h.history.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, e)
}

// exportExtractions handles GET /extractions/export.xlsx?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *handlers) exportExtractions(w http.ResponseWriter, r *http.Request) {
	logger := common.LoggerFromContext(r.Context(), h.logger)
	from, to, err := parseDateWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeAppError(w, err)
		return
	}

	xlsx, err := h.exporter.ExportExtractionsXLSX(r.Context(), from, to)
	if err != nil {
		logger.Error("export.xlsx.failed", "err", err)
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="extractions-%s.xlsx"`, time.Now().UTC().Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}

// parseDateWindow reads optional YYYY-MM-DD bounds.
func parseDateWindow(fromStr, toStr string) (from, to *time.Time, err error) {
	if fd := strings.TrimSpace(fromStr); fd != "" {
		t, perr := time.Parse("2006-01-02", fd)
		if perr != nil {
			return nil, nil, common.InvalidInputError("from must be YYYY-MM-DD")
		}
		from = &t
	}
	if td := strings.TrimSpace(toStr); td != "" {
		t, perr := time.Parse("2006-01-02", td)
		if perr != nil {
			return nil, nil, common.InvalidInputError("to must be YYYY-MM-DD")
		}
		to = &t
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, common.InvalidInputError("to must not be before from")
	}
	return from, to, nil
}
