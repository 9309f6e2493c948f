// Package stats reduces fully materialized maintenance request sets into
// dashboard KPIs and trend series. Everything here is pure in-memory
// arithmetic over already-fetched slices.
package stats

import (
	"time"

	"github.com/parkrow/propertyops/internal/models"
)

// KPIs summarizes a filtered request set for the dashboard.
type KPIs struct {
	TotalOpen           int                              `json:"total_open"`
	ByStatus            map[models.RequestStatus]int     `json:"by_status"`
	ByPriority          map[models.Priority]int          `json:"by_priority"`
	OverdueCount        int                              `json:"overdue_count"`
	AvgResolutionTimeMs *float64                         `json:"avg_resolution_time_ms,omitempty"`
}

// ComputeKPIs reduces the request set. AvgResolutionTimeMs is nil, not zero,
// when no request has an actual completion time.
func ComputeKPIs(requests []models.MaintenanceRequest, now time.Time) KPIs {
	k := KPIs{
		ByStatus:   make(map[models.RequestStatus]int),
		ByPriority: make(map[models.Priority]int),
	}

	var resolutionSumMs float64
	var resolved int
	for i := range requests {
		r := &requests[i]
		k.ByStatus[r.Status]++
		k.ByPriority[r.Priority]++
		if !r.Status.IsTerminal() {
			k.TotalOpen++
		}
		if r.EstimatedCompletion != nil && r.Status != models.StatusCompleted &&
			r.EstimatedCompletion.Before(now) {
			k.OverdueCount++
		}
		if r.ActualCompletion != nil {
			resolutionSumMs += float64(r.ActualCompletion.Sub(r.CreatedAt).Milliseconds())
			resolved++
		}
	}
	if resolved > 0 {
		avg := resolutionSumMs / float64(resolved)
		k.AvgResolutionTimeMs = &avg
	}
	return k
}

// TrendBucket is one fixed-width window of the trend series. A request
// counts toward CreatedCount in the bucket containing its creation time and,
// independently, toward CompletedCount in the bucket containing its actual
// completion time.
type TrendBucket struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	CreatedCount   int       `json:"created_count"`
	CompletedCount int       `json:"completed_count"`
}

// ComputeTrends partitions [rangeStart, rangeEnd] into contiguous buckets of
// bucketDays days aligned to rangeStart. A timestamp exactly on a bucket
// boundary falls into the bucket that starts there.
func ComputeTrends(requests []models.MaintenanceRequest, rangeStart, rangeEnd time.Time, bucketDays int) []TrendBucket {
	if bucketDays <= 0 {
		bucketDays = 7
	}
	bucketWidth := time.Duration(bucketDays) * 24 * time.Hour
	if !rangeEnd.After(rangeStart) {
		return []TrendBucket{}
	}

	span := rangeEnd.Sub(rangeStart)
	n := int(span / bucketWidth)
	if span%bucketWidth != 0 || n == 0 {
		n++
	}

	buckets := make([]TrendBucket, n)
	for i := range buckets {
		buckets[i].Start = rangeStart.Add(time.Duration(i) * bucketWidth)
		buckets[i].End = buckets[i].Start.Add(bucketWidth)
	}

	index := func(ts time.Time) int {
		if ts.Before(rangeStart) || ts.After(rangeEnd) {
			return -1
		}
		i := int(ts.Sub(rangeStart) / bucketWidth)
		if i >= n {
			i = n - 1
		}
		return i
	}

	for i := range requests {
		r := &requests[i]
		if j := index(r.CreatedAt); j >= 0 {
			buckets[j].CreatedCount++
		}
		if r.ActualCompletion != nil {
			if j := index(*r.ActualCompletion); j >= 0 {
				buckets[j].CompletedCount++
			}
		}
	}
	return buckets
}
