// Package reports turns a filtered slice of donations into aggregated,
// exportable reports.
package reports

import (
	"net/url"
	"time"

	"github.com/DipuTony/trulyhelp-portal/internal/common"
	"github.com/DipuTony/trulyhelp-portal/internal/donation"
)

// DateBucket is an auto-derived reporting period. Buckets are resolved at
// evaluation time, never persisted with concrete dates, so "this month"
// stays correct across sessions.
type DateBucket string

const (
	BucketMonthly   DateBucket = "monthly"
	BucketQuarterly DateBucket = "quarterly"
	BucketYearly    DateBucket = "yearly"
)

// FilterSpec describes which donations a report should include. Exactly one
// date policy applies: an explicit start/end pair, or an auto bucket.
type FilterSpec struct {
	Start  *time.Time
	End    *time.Time
	Bucket DateBucket

	Cause        string
	Method       donation.PaymentMethod
	Status       donation.PaymentStatus
	DonationType string
	DonorType    string
}

// Validate enforces the mutual exclusion between explicit dates and an auto
// bucket, and rejects inverted ranges.
func (f FilterSpec) Validate() error {
	explicit := f.Start != nil || f.End != nil
	if explicit && f.Bucket != "" {
		return &common.ValidationError{Field: "datePolicy", Message: "explicit dates and an auto bucket are mutually exclusive"}
	}
	if explicit && (f.Start == nil || f.End == nil) {
		return &common.ValidationError{Field: "datePolicy", Message: "both start and end dates are required"}
	}
	if explicit && f.Start.After(*f.End) {
		return &common.ValidationError{Field: "datePolicy", Message: "start date must not be after end date"}
	}
	switch f.Bucket {
	case "", BucketMonthly, BucketQuarterly, BucketYearly:
	default:
		return &common.ValidationError{Field: "type", Message: "unknown report bucket: " + string(f.Bucket)}
	}
	return nil
}

// BucketRange resolves an auto bucket against now: the current calendar
// month, the current 3-month block, or Jan 1 through Dec 31 of the current
// year. End is the last instant of the bucket's final day.
func BucketRange(bucket DateBucket, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	switch bucket {
	case BucketQuarterly:
		qStart := time.Month(((int(now.Month())-1)/3)*3 + 1)
		start := time.Date(now.Year(), qStart, 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 3, 0).Add(-time.Second)
		return start, end
	case BucketYearly:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		end := time.Date(now.Year(), 12, 31, 23, 59, 59, 0, loc)
		return start, end
	default: // monthly
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, 0).Add(-time.Second)
		return start, end
	}
}

const dateLayout = "2006-01-02"

// Build translates the filter into the backend's query parameters. It is
// deterministic for a given now. A parameter is omitted entirely when the
// corresponding field is unset or the ALL wildcard, so the backend's own
// default applies instead of an empty-string match.
func Build(f FilterSpec, now time.Time) (url.Values, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	q := url.Values{}
	switch {
	case f.Bucket != "":
		start, end := BucketRange(f.Bucket, now)
		q.Set("type", string(f.Bucket))
		q.Set("startDate", start.Format(dateLayout))
		q.Set("endDate", end.Format(dateLayout))
	case f.Start != nil:
		q.Set("startDate", f.Start.Format(dateLayout))
		q.Set("endDate", f.End.Format(dateLayout))
	}

	if f.Cause != "" && f.Cause != "ALL" {
		q.Set("cause", f.Cause)
	}
	if f.Method != "" {
		q.Set("paymentMethod", string(f.Method))
	}
	if f.Status != "" && f.Status != donation.StatusAll {
		q.Set("paymentStatus", string(f.Status))
	}
	if f.DonationType != "" && f.DonationType != "ALL" {
		q.Set("donationType", f.DonationType)
	}
	if f.DonorType != "" && f.DonorType != "ALL" {
		q.Set("donorType", f.DonorType)
	}
	return q, nil
}
