package models

import (
	"time"
)

// ConnectionStats is the read-side report derived from a profile's inquiry
// history. Save/dismiss rows never count. ResponseRate is nil (JSON null)
// while the profile has no resolved inquiries: a provider who has only
// pending requests has an undefined response rate, not a 0% one.
type ConnectionStats struct {
	TotalInquiries   int            `json:"totalInquiries"`
	AcceptedCount    int            `json:"acceptedCount"`
	DeclinedCount    int            `json:"declinedCount"`
	PendingCount     int            `json:"pendingCount"`
	ExpiredCount     int            `json:"expiredCount"`
	ResponseRate     *float64       `json:"responseRate"`
	MonthlyInquiries []MonthlyCount `json:"monthlyInquiries"`
}

// MonthlyCount is one dense calendar-month bucket ("2025-03" style key).
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

const statsMonths = 6

// ComputeConnectionStats replays a snapshot of connection rows into the
// aggregate report. Lazy expiration is applied first, and archived rows are
// folded into the expired bucket: both mean "no longer actionable". The
// monthly series always spans the trailing six calendar months ending at the
// current one, oldest first, with explicit zero counts for quiet months.
func ComputeConnectionStats(connections []Connection, now time.Time, ttl time.Duration) ConnectionStats {
	stats := ConnectionStats{}

	// Window and row keys must come from the same calendar. Rows are keyed
	// in UTC, so the window is too; a local clock still in the previous
	// month would otherwise drop a just-created row from every bucket.
	utcNow := now.UTC()
	monthStart := time.Date(utcNow.Year(), utcNow.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthIndex := make(map[string]int, statsMonths)
	stats.MonthlyInquiries = make([]MonthlyCount, 0, statsMonths)
	for i := statsMonths - 1; i >= 0; i-- {
		key := monthStart.AddDate(0, -i, 0).Format("2006-01")
		monthIndex[key] = len(stats.MonthlyInquiries)
		stats.MonthlyInquiries = append(stats.MonthlyInquiries, MonthlyCount{Month: key})
	}

	for _, conn := range connections {
		if conn.Type != ConnectionTypeInquiry {
			continue
		}
		stats.TotalInquiries++

		switch conn.EffectiveStatus(now, ttl) {
		case ConnectionStatusAccepted:
			stats.AcceptedCount++
		case ConnectionStatusDeclined:
			stats.DeclinedCount++
		case ConnectionStatusPending:
			stats.PendingCount++
		case ConnectionStatusExpired, ConnectionStatusArchived:
			stats.ExpiredCount++
		}

		key := conn.CreatedAt.UTC().Format("2006-01")
		if idx, ok := monthIndex[key]; ok {
			stats.MonthlyInquiries[idx].Count++
		}
	}

	resolved := stats.AcceptedCount + stats.DeclinedCount + stats.ExpiredCount
	if resolved > 0 {
		rate := float64(stats.AcceptedCount) / float64(resolved)
		stats.ResponseRate = &rate
	}

	return stats
}
