package extract

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/lease-extractor/constants"
	"github.com/joseph-ayodele/lease-extractor/internal/entity"
	"github.com/joseph-ayodele/lease-extractor/internal/llm"
)

// ParseResponse turns model output into a record. It decodes the span between the first '{'
// and the last '}', or the whole trimmed text when there is no such span. Anything that does
// not decode to a JSON object goes through FallbackExtract.
func ParseResponse(content string, logger *slog.Logger) (entity.PropertyRecord, constants.ParseMode) {
	if logger == nil {
		logger = slog.Default()
	}
	content = strings.TrimSpace(content)

	candidate := content
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		candidate = content[start : end+1]
	}

	rec, err := decodeRecord([]byte(candidate), logger)
	if err != nil {
		logger.Warn("extract.parse.fallback", "error", err, "content_len", len(content))
		return FallbackExtract(content), constants.ParseModeRegex
	}
	return rec, constants.ParseModeJSON
}

func decodeRecord(data []byte, logger *slog.Logger) (entity.PropertyRecord, error) {
	var rec entity.PropertyRecord
	if err := llm.ValidateRecordJSON(data); err == nil {
		if err := json.Unmarshal(data, &rec); err == nil {
			return rec, nil
		}
	} else {
		logger.Debug("extract.parse.schema_mismatch", "error", err)
	}

	clean, _, err := llm.NormalizeRecordJSON(data, logger)
	if err != nil {
		return entity.PropertyRecord{}, err
	}
	if err := json.Unmarshal(clean, &rec); err != nil {
		return entity.PropertyRecord{}, err
	}
	return rec, nil
}
