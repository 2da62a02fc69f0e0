package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/lease-extractor/internal/entity"
)

type fieldPattern struct {
	name string
	re   *regexp.Regexp
	set  func(a *entity.AddressData, v string)
}

// Applied in order; each pattern takes its first match.
var addressPatterns = []fieldPattern{
	{"streetAddress", regexp.MustCompile(`(?i)(\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Court|Ct))`),
		func(a *entity.AddressData, v string) { a.StreetAddress = v }},
	{"city", regexp.MustCompile(`(?i)([A-Za-z\s]+),\s*[A-Z]{2}`),
		func(a *entity.AddressData, v string) { a.City = v }},
	{"state", regexp.MustCompile(`(?i)[A-Za-z\s]+,\s*([A-Z]{2})`),
		func(a *entity.AddressData, v string) { a.State = v }},
	{"zipCode", regexp.MustCompile(`(?i)\b(\d{5}(?:-\d{4})?)\b`),
		func(a *entity.AddressData, v string) { a.ZipCode = v }},
	{"houseNumber", regexp.MustCompile(`(?i)^(\d+)`),
		func(a *entity.AddressData, v string) { a.HouseNumber = v }},
	{"streetName", regexp.MustCompile(`(?i)^\d+\s+(.+?)(?:,|\s|$)`),
		func(a *entity.AddressData, v string) { a.StreetName = v }},
}

// FallbackExtract salvages address parts from text that is not JSON.
// Only addressData is populated; country is always the default.
func FallbackExtract(content string) entity.PropertyRecord {
	rec := entity.FallbackRecord()
	content = strings.TrimSpace(content)
	for _, p := range addressPatterns {
		if m := p.re.FindStringSubmatch(content); m != nil {
			p.set(&rec.AddressData, m[1])
		}
	}
	return rec
}
