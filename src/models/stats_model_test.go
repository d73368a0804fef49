package models

import (
	"math"
	"testing"
	"time"
)

func inquiryAt(created time.Time, status ConnectionStatus) Connection {
	return Connection{
		FromProfile: family,
		ToProfile:   provider,
		Type:        ConnectionTypeInquiry,
		Status:      status,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestComputeConnectionStatsCounts(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

	connections := []Connection{
		inquiryAt(now.Add(-24*time.Hour), ConnectionStatusAccepted),
		inquiryAt(now.Add(-48*time.Hour), ConnectionStatusAccepted),
		inquiryAt(now.Add(-72*time.Hour), ConnectionStatusDeclined),
		inquiryAt(now.Add(-time.Hour), ConnectionStatusPending),
		inquiryAt(now.Add(-testTTL-time.Hour), ConnectionStatusPending), // lazily expired
		inquiryAt(now.Add(-96*time.Hour), ConnectionStatusArchived),
		// bookmarks never count
		{Type: ConnectionTypeSave, Status: ConnectionStatusAccepted, CreatedAt: now},
		{Type: ConnectionTypeDismiss, Status: ConnectionStatusAccepted, CreatedAt: now},
	}

	stats := ComputeConnectionStats(connections, now, testTTL)

	if stats.TotalInquiries != 6 {
		t.Errorf("TotalInquiries = %d, want 6", stats.TotalInquiries)
	}
	if stats.AcceptedCount != 2 {
		t.Errorf("AcceptedCount = %d, want 2", stats.AcceptedCount)
	}
	if stats.DeclinedCount != 1 {
		t.Errorf("DeclinedCount = %d, want 1", stats.DeclinedCount)
	}
	if stats.PendingCount != 1 {
		t.Errorf("PendingCount = %d, want 1", stats.PendingCount)
	}
	// expired bucket absorbs both the lazily expired row and the archived one
	if stats.ExpiredCount != 2 {
		t.Errorf("ExpiredCount = %d, want 2", stats.ExpiredCount)
	}

	if stats.ResponseRate == nil {
		t.Fatal("ResponseRate = nil, want 2/5")
	}
	if want := 2.0 / 5.0; math.Abs(*stats.ResponseRate-want) > 1e-9 {
		t.Errorf("ResponseRate = %v, want %v", *stats.ResponseRate, want)
	}
}

func TestComputeConnectionStatsNullRate(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no inquiries", func(t *testing.T) {
		stats := ComputeConnectionStats(nil, now, testTTL)
		if stats.ResponseRate != nil {
			t.Errorf("ResponseRate = %v, want nil", *stats.ResponseRate)
		}
	})

	t.Run("only pending inquiries", func(t *testing.T) {
		connections := []Connection{
			inquiryAt(now.Add(-time.Hour), ConnectionStatusPending),
			inquiryAt(now.Add(-2*time.Hour), ConnectionStatusPending),
		}
		stats := ComputeConnectionStats(connections, now, testTTL)
		if stats.ResponseRate != nil {
			t.Errorf("ResponseRate = %v, want nil while nothing is resolved", *stats.ResponseRate)
		}
		if stats.PendingCount != 2 {
			t.Errorf("PendingCount = %d, want 2", stats.PendingCount)
		}
	})

	t.Run("all declined gives zero not null", func(t *testing.T) {
		connections := []Connection{
			inquiryAt(now.Add(-time.Hour), ConnectionStatusDeclined),
		}
		stats := ComputeConnectionStats(connections, now, testTTL)
		if stats.ResponseRate == nil {
			t.Fatal("ResponseRate = nil, want 0")
		}
		if *stats.ResponseRate != 0 {
			t.Errorf("ResponseRate = %v, want 0", *stats.ResponseRate)
		}
	})
}

func TestComputeConnectionStatsMonthlySeries(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

	connections := []Connection{
		// current month, two rows
		inquiryAt(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), ConnectionStatusPending),
		inquiryAt(time.Date(2026, time.August, 14, 23, 59, 0, 0, time.UTC), ConnectionStatusAccepted),
		// four months back
		inquiryAt(time.Date(2026, time.April, 10, 8, 0, 0, 0, time.UTC), ConnectionStatusDeclined),
		// oldest in-window month
		inquiryAt(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), ConnectionStatusAccepted),
		// outside the six-month window, counted in totals but not the series
		inquiryAt(time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC), ConnectionStatusDeclined),
	}

	stats := ComputeConnectionStats(connections, now, testTTL)

	wantMonths := []string{"2026-03", "2026-04", "2026-05", "2026-06", "2026-07", "2026-08"}
	wantCounts := []int{1, 1, 0, 0, 0, 2}

	if len(stats.MonthlyInquiries) != statsMonths {
		t.Fatalf("series length = %d, want %d", len(stats.MonthlyInquiries), statsMonths)
	}
	for i, bucket := range stats.MonthlyInquiries {
		if bucket.Month != wantMonths[i] {
			t.Errorf("bucket[%d].Month = %q, want %q", i, bucket.Month, wantMonths[i])
		}
		if bucket.Count != wantCounts[i] {
			t.Errorf("bucket[%d] (%s) count = %d, want %d", i, bucket.Month, bucket.Count, wantCounts[i])
		}
	}

	if stats.TotalInquiries != 5 {
		t.Errorf("TotalInquiries = %d, want 5 including the out-of-window row", stats.TotalInquiries)
	}
}

func TestComputeConnectionStatsLocalClockBehindUTC(t *testing.T) {
	// 2026-08-31 23:00 UTC-7 is already 2026-09-01 in UTC. The window must
	// follow the UTC calendar so a row created right now still lands in the
	// newest bucket instead of falling past it.
	pacific := time.FixedZone("UTC-7", -7*60*60)
	now := time.Date(2026, time.August, 31, 23, 0, 0, 0, pacific)

	connections := []Connection{
		inquiryAt(now, ConnectionStatusPending),
	}

	stats := ComputeConnectionStats(connections, now, testTTL)

	last := stats.MonthlyInquiries[len(stats.MonthlyInquiries)-1]
	if last.Month != "2026-09" {
		t.Errorf("newest bucket = %q, want 2026-09", last.Month)
	}
	if last.Count != 1 {
		t.Errorf("newest bucket count = %d, want 1", last.Count)
	}

	total := 0
	for _, bucket := range stats.MonthlyInquiries {
		total += bucket.Count
	}
	if total != 1 {
		t.Errorf("row counted %d times across the window, want 1", total)
	}
}

func TestComputeConnectionStatsYearBoundary(t *testing.T) {
	now := time.Date(2026, time.January, 20, 9, 0, 0, 0, time.UTC)

	stats := ComputeConnectionStats(nil, now, testTTL)

	wantMonths := []string{"2025-08", "2025-09", "2025-10", "2025-11", "2025-12", "2026-01"}
	for i, bucket := range stats.MonthlyInquiries {
		if bucket.Month != wantMonths[i] {
			t.Errorf("bucket[%d].Month = %q, want %q", i, bucket.Month, wantMonths[i])
		}
	}
}
