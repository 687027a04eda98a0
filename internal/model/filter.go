package model

import "strings"

// RecordFilter contains criteria for filtering validation records.
// All criteria are optional. Within Domains, values are combined with OR
// logic (any value matches). Between fields, criteria are combined with
// AND logic (all fields must match).
type RecordFilter struct {
	// Domains filters by registrable domain (case-insensitive, OR within list)
	Domains []string

	// Passed filters by the overall verdict when non-nil
	Passed *bool

	// MinScore keeps only records with an overall score at or above this value
	MinScore int
}

// FilterRecords filters a slice of validation records based on the provided
// criteria. Returns a new slice containing only records that match the
// filter. Zero-value criteria are ignored (treated as "match all").
func FilterRecords(records []*ValidationRecord, filter RecordFilter) []*ValidationRecord {
	// If no filters specified, return all records
	if len(filter.Domains) == 0 && filter.Passed == nil && filter.MinScore <= 0 {
		return records
	}

	// Create a lookup map for efficient domain filtering
	domainMap := make(map[string]bool)
	for _, domain := range filter.Domains {
		domainMap[strings.ToLower(domain)] = true
	}

	var filtered []*ValidationRecord

	for _, record := range records {
		// Apply domain filter (case-insensitive)
		if len(filter.Domains) > 0 && !domainMap[strings.ToLower(record.Domain)] {
			continue
		}

		// Apply overall verdict filter
		if filter.Passed != nil && record.OverallPassed != *filter.Passed {
			continue
		}

		// Apply minimum score filter
		if filter.MinScore > 0 && record.OverallScore < filter.MinScore {
			continue
		}

		filtered = append(filtered, record)
	}

	return filtered
}
