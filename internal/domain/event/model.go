package event

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/validation"
)

// Color tags used by the public page to style an event card.
const (
	ColorPrimary   = "primary"
	ColorSecondary = "secondary"
	ColorAccent    = "accent"
)

// ValidColors contains all valid color tags.
var ValidColors = []string{ColorPrimary, ColorSecondary, ColorAccent}

// Months are the short month codes offered by the admin form.
var Months = []string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// Max length constants for user-editable fields.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxTimeLength        = 100
	MaxLocationLength    = 200
)

// ErrInvalidID is returned when a path id does not parse as a positive integer.
var ErrInvalidID = errors.New("event id must be a positive integer")

// Event is a store-run promotional or community occurrence shown on the public page.
// INVARIANT: ID and CreatedAt are assigned by the store and never change afterwards.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Month       string    `json:"month"`
	Day         string    `json:"day"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Draft carries the mutable fields of an event, as submitted by the admin form.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Month       string `json:"month"`
	Day         string `json:"day"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Color       string `json:"color"`
}

// Patch is a partial update; nil fields keep their current value.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Month       *string `json:"month,omitempty"`
	Day         *string `json:"day,omitempty"`
	Time        *string `json:"time,omitempty"`
	Location    *string `json:"location,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// Draft returns the mutable fields of e.
func (e Event) Draft() Draft {
	return Draft{
		Title:       e.Title,
		Description: e.Description,
		Month:       e.Month,
		Day:         e.Day,
		Time:        e.Time,
		Location:    e.Location,
		Color:       e.Color,
	}
}

// WithDraft returns e with its mutable fields replaced by d.
// POST: ID and CreatedAt are unchanged
func (e Event) WithDraft(d Draft) Event {
	e.Title = d.Title
	e.Description = d.Description
	e.Month = d.Month
	e.Day = d.Day
	e.Time = d.Time
	e.Location = d.Location
	e.Color = d.Color
	return e
}

// Apply shallow-merges p over d.
func (p Patch) Apply(d Draft) Draft {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Month != nil {
		d.Month = *p.Month
	}
	if p.Day != nil {
		d.Day = *p.Day
	}
	if p.Time != nil {
		d.Time = *p.Time
	}
	if p.Location != nil {
		d.Location = *p.Location
	}
	if p.Color != nil {
		d.Color = *p.Color
	}
	return d
}

// IsEmpty reports whether p changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Normalize trims surrounding whitespace, upper-cases the month code and
// rewrites a numeric day in its plain form ("05" and "+5" become "5").
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Month = strings.ToUpper(strings.TrimSpace(d.Month))
	d.Day = strings.TrimSpace(d.Day)
	if n, err := strconv.Atoi(d.Day); err == nil {
		d.Day = strconv.Itoa(n)
	}
	d.Time = strings.TrimSpace(d.Time)
	d.Location = strings.TrimSpace(d.Location)
	d.Color = strings.ToLower(strings.TrimSpace(d.Color))
	return d
}

// Validate checks every required field and reports all offending fields at once.
// PRE: d has been normalized
// POST: returns nil if valid, validation.Errors otherwise
func (d Draft) Validate() error {
	var errs validation.Errors
	errs.Required("title", d.Title)
	errs.MaxLength("title", d.Title, MaxTitleLength)
	errs.Required("description", d.Description)
	errs.MaxLength("description", d.Description, MaxDescriptionLength)
	if errs.Required("month", d.Month) && !IsMonth(d.Month) {
		errs.Add("month", "month must be one of "+strings.Join(Months, ", "))
	}
	if errs.Required("day", d.Day) {
		if n, err := strconv.Atoi(d.Day); err != nil || n < 1 || n > 31 {
			errs.Add("day", "day must be a number between 1 and 31")
		}
	}
	errs.Required("time", d.Time)
	errs.MaxLength("time", d.Time, MaxTimeLength)
	errs.Required("location", d.Location)
	errs.MaxLength("location", d.Location, MaxLocationLength)
	if errs.Required("color", d.Color) && !IsColor(d.Color) {
		errs.Add("color", "color must be one of "+strings.Join(ValidColors, ", "))
	}
	return errs.Err()
}

// IsMonth reports whether code is one of Months.
func IsMonth(code string) bool {
	for _, m := range Months {
		if m == code {
			return true
		}
	}
	return false
}

// IsColor reports whether c is one of ValidColors.
func IsColor(c string) bool {
	for _, v := range ValidColors {
		if v == c {
			return true
		}
	}
	return false
}

// MonthNumber returns 1..12 for a month code, or 0 when unknown.
func MonthNumber(code string) time.Month {
	for i, m := range Months {
		if m == strings.ToUpper(code) {
			return time.Month(i + 1)
		}
	}
	return 0
}

// ParseID parses a path segment into an event id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
