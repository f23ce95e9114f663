package service

import (
	"strings"
	"time"

	"vendorhub/backend/internal/apperr"
	"vendorhub/backend/internal/domain"
)

// Range carries raw startDate/endDate query values. A date-only bound covers
// the whole calendar day in the service location; a full timestamp is exact.
type Range struct {
	Start string
	End   string
}

func (s *Service) timeBounds(r Range) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if raw := strings.TrimSpace(r.Start); raw != "" {
		t, dateOnly, err := parseBound(raw)
		if err != nil {
			return nil, nil, err
		}
		if dateOnly {
			t, _ = s.dayBounds(domain.NewDate(t))
		}
		from = &t
	}
	if raw := strings.TrimSpace(r.End); raw != "" {
		t, dateOnly, err := parseBound(raw)
		if err != nil {
			return nil, nil, err
		}
		if dateOnly {
			_, t = s.dayBounds(domain.NewDate(t))
		}
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, apperr.Validation("startDate must not be after endDate")
	}
	return from, to, nil
}

// dateBounds is timeBounds for date-typed columns such as wasteDate.
func dateBounds(r Range) (*domain.Date, *domain.Date, error) {
	var from, to *domain.Date
	if raw := strings.TrimSpace(r.Start); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return nil, nil, apperr.Validation("Invalid date format, expected YYYY-MM-DD")
		}
		from = &d
	}
	if raw := strings.TrimSpace(r.End); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return nil, nil, apperr.Validation("Invalid date format, expected YYYY-MM-DD")
		}
		to = &d
	}
	if from != nil && to != nil && from.After(to.Time) {
		return nil, nil, apperr.Validation("startDate must not be after endDate")
	}
	return from, to, nil
}

func parseBound(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(domain.DateLayout, raw); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, apperr.Validation("Invalid date format, expected YYYY-MM-DD")
}
