package constants

import "strings"

// HistoryDriver selects the extraction history backend.
type HistoryDriver string

const (
	HistoryNone     HistoryDriver = "none"
	HistorySQLite   HistoryDriver = "sqlite"
	HistoryPostgres HistoryDriver = "postgres"
)

// ParseHistoryDriver lowercases and trims the value; "" and unknown values map to HistoryNone.
func ParseHistoryDriver(s string) (HistoryDriver, bool) {
	switch HistoryDriver(strings.ToLower(strings.TrimSpace(s))) {
	case "", HistoryNone:
		return HistoryNone, true
	case HistorySQLite, "sqlite3":
		return HistorySQLite, true
	case HistoryPostgres, "postgresql", "pg":
		return HistoryPostgres, true
	}
	return HistoryNone, false
}
