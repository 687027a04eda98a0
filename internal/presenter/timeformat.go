// Package presenter holds display helpers shared by the CLI commands.
package presenter

import (
	"fmt"
	"time"
)

// FormatTimeSince renders how long ago t was, e.g. "5 minutes ago",
// "2.5 hours ago" or "3 days ago". Sub-minute ages read "just now" so a
// record checked moments ago does not print as "0 minutes ago".
func FormatTimeSince(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%.0f minutes ago", d.Minutes())
	case d < 24*time.Hour:
		return fmt.Sprintf("%.1f hours ago", d.Hours())
	default:
		return fmt.Sprintf("%.0f days ago", d.Hours()/24)
	}
}

// FormatTimeSinceCompact is the column-width-friendly variant: "5m ago",
// "2.5h ago", "3d ago".
func FormatTimeSinceCompact(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%.0fm ago", d.Minutes())
	case d < 24*time.Hour:
		return fmt.Sprintf("%.1fh ago", d.Hours())
	default:
		return fmt.Sprintf("%.0fd ago", d.Hours()/24)
	}
}
