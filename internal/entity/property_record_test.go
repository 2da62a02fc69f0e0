package entity

import (
	"encoding/json"
	"sort"
	"testing"
)

func TestPropertyRecordKeySet(t *testing.T) {
	b, err := json.Marshal(EmptyRecord())
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}

	want := append([]string{"addressData"}, RecordFields...)
	if len(m) != len(want) {
		t.Fatalf("got %d top-level keys, want %d", len(m), len(want))
	}
	for _, k := range want {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %q", k)
			continue
		}
		if k == "addressData" {
			continue
		}
		if s, ok := m[k].(string); !ok || s != "" {
			t.Errorf("key %q = %#v, want empty string", k, m[k])
		}
	}

	addr, ok := m["addressData"].(map[string]any)
	if !ok {
		t.Fatalf("addressData is %T", m["addressData"])
	}
	var got []string
	for k := range addr {
		got = append(got, k)
	}
	sort.Strings(got)
	exp := append([]string(nil), AddressFields...)
	sort.Strings(exp)
	if len(got) != len(exp) {
		t.Fatalf("addressData keys = %v, want %v", got, exp)
	}
	for i := range got {
		if got[i] != exp[i] {
			t.Fatalf("addressData keys = %v, want %v", got, exp)
		}
	}
}

func TestRecordConstructors(t *testing.T) {
	if r := EmptyRecord(); r.IsActive != "" || r.AddressData.Country != "" {
		t.Errorf("EmptyRecord = %+v", r)
	}
	if r := FallbackRecord(); r.AddressData.Country != "USA" || r.IsActive != "" {
		t.Errorf("FallbackRecord = %+v", r)
	}
	if r := TemplateRecord(); r.AddressData.Country != "USA" || r.IsActive != "true" {
		t.Errorf("TemplateRecord = %+v", r)
	}
}
