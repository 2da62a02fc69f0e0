package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/lease-extractor/internal/common"
	"github.com/joseph-ayodele/lease-extractor/internal/entity"
	"github.com/joseph-ayodele/lease-extractor/internal/extract"
)

const (
	msgMissingText = "Missing 'text' field in request"
	msgEmptyText   = "Empty text provided"
	msgTextType    = "'text' must be a string"
)

func (h *handlers) extractAddress(w http.ResponseWriter, r *http.Request) {
	logger := common.LoggerFromContext(r.Context(), h.logger)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		logger.Debug("extract.request.invalid_body", "error", err)
		writeError(w, http.StatusBadRequest, msgMissingText)
		return
	}
	raw, ok := payload["text"]
	if !ok {
		writeError(w, http.StatusBadRequest, msgMissingText)
		return
	}
	var text string
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) || json.Unmarshal(raw, &text) != nil {
		writeError(w, http.StatusBadRequest, msgTextType)
		return
	}

	if v := common.NewValidator().Field("text", text, common.Required); v.HasErrors() {
		writeError(w, http.StatusBadRequest, msgEmptyText)
		return
	}

	rec, out := h.extractor.ExtractWithOutcome(r.Context(), text)
	h.record(r, text, rec, out)

	writeData(w, rec)
}

// record hands the extraction to the history queue when one is configured.
func (h *handlers) record(r *http.Request, text string, rec entity.PropertyRecord, out extract.Outcome) {
	if h.recorder == nil {
		return
	}
	e := &entity.Extraction{
		ID:        uuid.New(),
		RequestID: common.RequestIDFromContext(r.Context()),
		CreatedAt: time.Now().UTC(),
		Provider:  out.Provider,
		Model:     out.Model,
		ParseMode: string(out.Mode),
		InputText: text,
		RawOutput: out.RawOutput,
		Record:    rec,
		ElapsedMs: out.Elapsed.Milliseconds(),
	}
	if out.Err != nil {
		msg := out.Err.Error()
		e.ErrorMessage = &msg
	}
	if err := h.recorder.Enqueue(e); err != nil {
		common.LoggerFromContext(r.Context(), h.logger).Debug("history.enqueue.skipped", "id", e.ID, "error", err)
	}
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}
