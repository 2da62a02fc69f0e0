package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/joseph-ayodele/lease-extractor/internal/entity"
)

func TestBuildUserPrompt(t *testing.T) {
	ocr := "Lease for 9 Birch Lane, Dover, DE 19901"
	p := BuildUserPrompt(ocr)

	if !strings.Contains(p, ocr) {
		t.Error("prompt does not embed the OCR text")
	}
	if !strings.Contains(p, "123 Maple Street, Apt. 4B, Springfield, IL 62704, USA") {
		t.Error("prompt does not embed the worked example")
	}
	if !strings.Contains(p, `"tenantEmail": "john.doe@example.com"`) {
		t.Error("prompt does not embed the worked example output")
	}
	if !strings.Contains(p, `"isActive": "true"`) || !strings.Contains(p, `"country": "USA"`) {
		t.Error("prompt does not embed the target template")
	}
	if strings.Index(p, ocr) > strings.Index(p, "Return a JSON object") {
		t.Error("OCR text should precede the target template")
	}

	req := BuildRequest(ocr)
	if req.System != SystemPrompt || req.User != p {
		t.Error("BuildRequest does not combine system and user prompts")
	}
}

func TestExampleRecordMatchesSchema(t *testing.T) {
	b, err := json.Marshal(ExampleRecord())
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateRecordJSON(b); err != nil {
		t.Fatalf("example record invalid: %v", err)
	}
	b, _ = json.Marshal(entity.EmptyRecord())
	if err := ValidateRecordJSON(b); err != nil {
		t.Fatalf("empty record invalid: %v", err)
	}
}

func TestValidateRecordJSON(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"partial", `{"rooms":"3","addressData":{"city":"Dover"}}`, true},
		{"empty object", `{}`, true},
		{"number value", `{"rooms":3}`, false},
		{"unknown key", `{"bedrooms":"3"}`, false},
		{"unknown address key", `{"addressData":{"county":"Kent"}}`, false},
		{"address not object", `{"addressData":"9 Birch Lane"}`, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateRecordJSON([]byte(c.doc))
			if (err == nil) != c.valid {
				t.Errorf("valid=%v err=%v", c.valid, err)
			}
		})
	}
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := map[string]any{
		"type":     "object",
		"required": []string{"a"},
	}
	if err := ValidateJSONAgainstSchema(schema, []byte(`{"a":1}`)); err != nil {
		t.Errorf("unexpected: %v", err)
	}
	if err := ValidateJSONAgainstSchema(schema, []byte(`{}`)); err == nil {
		t.Error("expected required error")
	}
	if err := ValidateJSONAgainstSchema(schema, []byte(`{`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestNormalizeRecordJSON(t *testing.T) {
	raw := `{
		"rooms": 3,
		"rentAmount": 1200.50,
		"garden": true,
		"floor": null,
		"tenantName": "John",
		"bedrooms": "3",
		"parking": ["street"],
		"addressData": {"city": "Dover", "zipCode": 19901, "county": "Kent"}
	}`
	out, dropped, err := NormalizeRecordJSON([]byte(raw), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateRecordJSON(out); err != nil {
		t.Fatalf("sanitized doc still invalid: %v", err)
	}

	var rec entity.PropertyRecord
	if err := json.Unmarshal(out, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Rooms != "3" || rec.RentAmount != "1200.50" || rec.Garden != "true" || rec.Floor != "" || rec.TenantName != "John" {
		t.Errorf("rec = %+v", rec)
	}
	if rec.AddressData.City != "Dover" || rec.AddressData.ZipCode != "19901" {
		t.Errorf("address = %+v", rec.AddressData)
	}
	if rec.Parking != "" {
		t.Errorf("array value should be dropped, got %q", rec.Parking)
	}

	want := map[string]bool{"bedrooms(unknown)": true, "parking(type)": true, "addressData.county(unknown)": true}
	for _, d := range dropped {
		delete(want, d)
	}
	if len(want) != 0 {
		t.Errorf("dropped = %v, missing %v", dropped, want)
	}
}

func TestNormalizeRecordJSONRejectsNonObjects(t *testing.T) {
	for _, doc := range []string{`null`, `[1,2]`, `"text"`, `{"a":"b"} {}`} {
		if _, _, err := NormalizeRecordJSON([]byte(doc), nil); err == nil {
			t.Errorf("NormalizeRecordJSON(%s) expected error", doc)
		}
	}
}

func TestSendJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get("X-Api-Key") != "k" {
			t.Errorf("headers = %v", r.Header)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != `{"q":"ping"}` {
			t.Errorf("body = %s", b)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	raw, status, err := SendJSON(context.Background(), srv.Client(), srv.URL+"/v1?key=secret", map[string]string{"q": "ping"}, map[string]string{"X-Api-Key": "k"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusOK || string(raw) != `{"ok":true}` {
		t.Errorf("status=%d raw=%s", status, raw)
	}
}

func TestSendJSONNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, status, err := SendJSON(context.Background(), nil, srv.URL, map[string]any{}, nil, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v", err)
	}
	if status != http.StatusTooManyRequests || se.StatusCode != http.StatusTooManyRequests || !strings.Contains(se.Body, "rate limited") {
		t.Errorf("status=%d se=%+v", status, se)
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://example.test/v1beta/models/m:generateContent?key=secret")
	if strings.Contains(got, "secret") || !strings.HasSuffix(got, ":generateContent") {
		t.Errorf("redactURL = %q", got)
	}
}

func TestStatusErrorTruncatesOnRuneBoundary(t *testing.T) {
	// 511 ASCII bytes then a 3-byte rune straddling the cap.
	body := strings.Repeat("a", 511) + "€" + strings.Repeat("b", 100)
	msg := (&StatusError{StatusCode: 502, Body: body}).Error()
	if !utf8.ValidString(msg) {
		t.Fatalf("message is not valid UTF-8: %q", msg[len(msg)-8:])
	}
	if !strings.HasSuffix(msg, strings.Repeat("a", 511)+"…") {
		t.Errorf("unexpected tail: %q", msg[len(msg)-8:])
	}

	short := (&StatusError{StatusCode: 400, Body: "bad"}).Error()
	if short != "non-2xx status: 400: bad" {
		t.Errorf("short = %q", short)
	}
}
