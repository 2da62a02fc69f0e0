package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/joseph-ayodele/lease-extractor/internal/entity"
)

// NormalizeRecordJSON
// - Keeps known keys verbatim when they are strings
// - Renders numbers and booleans in their JSON text form ("85", "1200.50", "true")
// - Turns null into ""
// - Drops unknown keys and values of the wrong shape (objects/arrays where a string belongs)
func NormalizeRecordJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m, err := decodeObject(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)
	out := make(map[string]any, len(entity.RecordFields)+1)

	for _, k := range entity.RecordFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		if s, ok := coerceString(v); ok {
			out[k] = s
		} else {
			dropped = append(dropped, k+"(type)")
		}
	}

	if v, ok := m["addressData"]; ok {
		if addr, isObj := v.(map[string]any); isObj {
			clean := make(map[string]any, len(entity.AddressFields))
			for _, k := range entity.AddressFields {
				av, ok := addr[k]
				if !ok {
					continue
				}
				if s, ok := coerceString(av); ok {
					clean[k] = s
				} else {
					dropped = append(dropped, "addressData."+k+"(type)")
				}
			}
			for k := range addr {
				if !isAddressField(k) {
					dropped = append(dropped, "addressData."+k+"(unknown)")
				}
			}
			out["addressData"] = clean
		} else if v != nil {
			dropped = append(dropped, "addressData(type)")
		}
	}

	for k := range m {
		if k != "addressData" && !isRecordField(k) {
			dropped = append(dropped, k+"(unknown)")
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return b, dropped, nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("not a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON object")
	}
	return m, nil
}

func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case nil:
		return "", true
	default:
		return "", false
	}
}

func isRecordField(k string) bool {
	for _, f := range entity.RecordFields {
		if f == k {
			return true
		}
	}
	return false
}

func isAddressField(k string) bool {
	for _, f := range entity.AddressFields {
		if f == k {
			return true
		}
	}
	return false
}
