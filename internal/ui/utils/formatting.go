package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/devnullvoid/insightview/internal/store"
	"github.com/devnullvoid/insightview/pkg/api"
)

// FormatAge formats the time elapsed since t in a short human-readable form.
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "N/A"
	}

	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh ago", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm ago", hours, minutes)
	default:
		return fmt.Sprintf("%dm ago", minutes)
	}
}

// FormatMatchCount renders the match count, marking results that hit the
// backend's limit.
func FormatMatchCount(r api.SearchResults) string {
	noun := "matches"
	if r.MatchCount == 1 {
		noun = "match"
	}
	if r.LimitHit {
		return fmt.Sprintf("%d+ %s (limit hit)", r.MatchCount, noun)
	}
	return fmt.Sprintf("%d %s", r.MatchCount, noun)
}

// RecordLines renders a stored record as plain text lines for a scroll pane.
// Repository sections are listed in full.
func RecordLines(rec store.Record, now time.Time) []string {
	r := rec.Results
	lines := []string{
		"Query:  " + rec.Key.Label(),
		"Result: " + FormatMatchCount(r),
		"Stored: " + FormatAge(rec.StoredAt, now),
	}

	if r.Alert != nil {
		lines = append(lines, "", "! "+r.Alert.Title)
		for _, l := range strings.Split(r.Alert.Description, "\n") {
			lines = append(lines, "  "+l)
		}
	}

	lines = appendRepos(lines, "Cloning", r.Cloning)
	lines = appendRepos(lines, "Missing", r.Missing)
	lines = appendRepos(lines, "Timed out", r.Timedout)

	return lines
}

func appendRepos(lines []string, title string, repos []api.Repo) []string {
	if len(repos) == 0 {
		return lines
	}

	lines = append(lines, "", fmt.Sprintf("%s (%d):", title, len(repos)))
	for _, repo := range repos {
		lines = append(lines, "  "+repo.Name)
	}
	return lines
}
