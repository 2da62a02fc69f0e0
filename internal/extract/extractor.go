package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/lease-extractor/constants"
	"github.com/joseph-ayodele/lease-extractor/internal/common"
	"github.com/joseph-ayodele/lease-extractor/internal/entity"
	"github.com/joseph-ayodele/lease-extractor/internal/llm"
)

// Outcome describes how a record was produced.
type Outcome struct {
	Mode      constants.ParseMode
	Provider  string
	Model     string
	RawOutput string
	Err       error
	Elapsed   time.Duration
}

// Extractor turns OCR text into a PropertyRecord with one completion call.
type Extractor struct {
	completer llm.Completer
	logger    *slog.Logger
}

func NewExtractor(completer llm.Completer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{completer: completer, logger: logger}
}

// Extract never fails: completion errors yield entity.EmptyRecord().
func (e *Extractor) Extract(ctx context.Context, text string) entity.PropertyRecord {
	rec, _ := e.ExtractWithOutcome(ctx, text)
	return rec
}

// ExtractWithOutcome is Extract plus the details needed for logging and history.
func (e *Extractor) ExtractWithOutcome(ctx context.Context, text string) (rec entity.PropertyRecord, out Outcome) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, e.logger)

	out.Provider = e.completer.Provider()
	out.Model = e.completer.Model()

	defer func() {
		if r := recover(); r != nil {
			rec = entity.EmptyRecord()
			out.Mode = constants.ParseModeEmpty
			out.Err = fmt.Errorf("extract panic: %v", r)
			logger.Error("extract.panic", "error", out.Err)
		}
		out.Elapsed = time.Since(start)
	}()

	logger.Info("extract.start", "provider", out.Provider, "model", out.Model, "text_len", len(text))

	comp, err := e.completer.Complete(ctx, llm.BuildRequest(text))
	if err != nil {
		logger.Error("extract.completion_failed", "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		out.Mode = constants.ParseModeEmpty
		out.Err = err
		return entity.EmptyRecord(), out
	}
	if comp.Model != "" {
		out.Model = comp.Model
	}
	out.RawOutput = comp.Text

	rec, out.Mode = ParseResponse(comp.Text, logger)

	logger.Info("extract.done",
		"mode", out.Mode,
		"model", out.Model,
		"finish_reason", comp.FinishReason,
		"city", rec.AddressData.City,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, out
}
