package model

import "sort"

// SortBy specifies the field and order for sorting validation records
type SortBy string

const (
	SortByURL       SortBy = "url"
	SortByDomain    SortBy = "domain"
	SortByScore     SortBy = "score"
	SortByCheckedAt SortBy = "checked-at"
	SortByDefault   SortBy = "" // Default sort: checked-at, newest first
)

// SortRecords sorts a slice of validation records in place based on the
// specified field. The sortBy parameter should be one of: "url", "domain",
// "score", "checked-at". If sortBy is empty or unrecognized, records are
// sorted by check time with the newest first.
func SortRecords(records []*ValidationRecord, sortBy string) {
	switch SortBy(sortBy) {
	case SortByURL:
		sort.Slice(records, func(i, j int) bool {
			return records[i].URL < records[j].URL
		})
	case SortByDomain:
		sort.Slice(records, func(i, j int) bool {
			if records[i].Domain != records[j].Domain {
				return records[i].Domain < records[j].Domain
			}
			return records[i].CheckedAt.After(records[j].CheckedAt)
		})
	case SortByScore:
		sort.Slice(records, func(i, j int) bool {
			return records[i].OverallScore > records[j].OverallScore
		})
	default:
		// Default sort by check time, newest first
		sort.Slice(records, func(i, j int) bool {
			return records[i].CheckedAt.After(records[j].CheckedAt)
		})
	}
}
