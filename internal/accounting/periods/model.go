package periods

import (
	"strings"
	"time"
)

// Status enumerates accounting period lifecycle values.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
	StatusReopened   Status = "reopened"
)

// ParseStatus normalises a status filter.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed, StatusReopened:
		return s, true
	}
	return "", false
}

// Closable reports whether the closing engine may run from this status.
func (s Status) Closable() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusReopened
}

// Type enumerates period granularity.
type Type string

const (
	TypeMonthly   Type = "monthly"
	TypeQuarterly Type = "quarterly"
	TypeYearly    Type = "yearly"
)

// ParseType normalises a period type.
func ParseType(raw string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case TypeMonthly, TypeQuarterly, TypeYearly:
		return t, true
	}
	return "", false
}

// Period represents a fiscal window whose status gates posting.
type Period struct {
	ID                    int64      `json:"id"`
	Name                  string     `json:"period_name"`
	Type                  Type       `json:"period_type"`
	StartDate             time.Time  `json:"start_date"`
	EndDate               time.Time  `json:"end_date"`
	Status                Status     `json:"status"`
	ClosedAt              *time.Time `json:"closed_at,omitempty"`
	ClosedBy              *int64     `json:"closed_by,omitempty"`
	ClosingJournalEntryID *int64     `json:"closing_journal_entry_id,omitempty"`
	ReopenedAt            *time.Time `json:"reopened_at,omitempty"`
	ReopenedBy            *int64     `json:"reopened_by,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// IsClosed reports whether postings into the period are blocked.
func (p Period) IsClosed() bool {
	return p.Status == StatusClosed
}

// Covers reports whether date falls within the period, inclusive on both ends.
func (p Period) Covers(date time.Time) bool {
	d := dateOnly(date)
	return !d.Before(dateOnly(p.StartDate)) && !d.After(dateOnly(p.EndDate))
}

// CreateInput captures a manual period definition.
type CreateInput struct {
	Name      string `json:"period_name" validate:"required,max=100"`
	Type      string `json:"period_type" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// GenerateInput requests auto-generation of a year's periods.
type GenerateInput struct {
	Year int    `json:"year" validate:"required,gte=1900,lte=9999"`
	Type string `json:"period_type" validate:"required"`
}

// Draft is a validated period ready for insertion.
type Draft struct {
	Name      string
	Type      Type
	StartDate time.Time
	EndDate   time.Time
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
