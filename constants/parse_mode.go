package constants

// ParseMode records which path produced a property record.
type ParseMode string

// Stable values (stored as-is in the extractions table).
const (
	ParseModeJSON  ParseMode = "JSON"  // model output decoded as JSON
	ParseModeRegex ParseMode = "REGEX" // JSON decode failed, regex fallback applied
	ParseModeEmpty ParseMode = "EMPTY" // prompt/completion failed, fixed empty record
)

// DefaultCountry is what the schema template and the regex fallback put in addressData.country.
const DefaultCountry = "USA"
