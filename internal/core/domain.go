package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

const (
	dateLayout     = "2006-01-02"
	monthKeyLayout = "January 2006"
)

// MaxNoteLength bounds the free-form note attached to an expense.
const MaxNoteLength = 200

type (
	// Date is a calendar date, held as UTC midnight.
	Date struct {
		time.Time
	}

	// MonthKey identifies one calendar month.
	MonthKey struct {
		Year  int
		Month time.Month
	}

	// ExpenseID is an opaque identifier assigned when an expense is created.
	ExpenseID string

	Expense struct {
		ID       ExpenseID `json:"id"`
		Amount   Money     `json:"amount"`
		Category Category  `json:"category"`
		Date     Date      `json:"date"`
		Note     string    `json:"note,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyID       = errors.New("empty expense id")
	ErrNoteTooLong   = fmt.Errorf("note too long (max %d characters)", MaxNoteLength)
)

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

var timestampLocation atomic.Pointer[time.Location]

// SetTimestampLocation sets the zone in which RFC 3339 timestamps are
// bucketed into calendar days. The default is UTC.
func SetTimestampLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	timestampLocation.Store(loc)
}

func timestampZone() *time.Location {
	if loc := timestampLocation.Load(); loc != nil {
		return loc
	}
	return time.UTC
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp. A timestamp takes
// its calendar day in the zone set by SetTimestampLocation.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t.In(timestampZone())), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// MonthKey returns the calendar month the date falls in.
func (d Date) MonthKey() MonthKey {
	return MonthKey{Year: d.Year(), Month: d.Month()}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthOf returns the month key for t in t's location.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Prev returns the preceding calendar month.
func (k MonthKey) Prev() MonthKey {
	if k.Month == time.January {
		return MonthKey{Year: k.Year - 1, Month: time.December}
	}
	return MonthKey{Year: k.Year, Month: k.Month - 1}
}

// Before reports whether k is an earlier month than o.
func (k MonthKey) Before(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

// String renders the key the way it is displayed, e.g. "October 2026".
func (k MonthKey) String() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format(monthKeyLayout)
}

func (k MonthKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MonthKey) UnmarshalText(text []byte) error {
	t, err := time.Parse(monthKeyLayout, string(text))
	if err != nil {
		return fmt.Errorf("invalid month key %q: %w", text, err)
	}
	*k = MonthOf(t)
	return nil
}

// UnmarshalJSON accepts IDs stored as strings or as numeric timestamps.
func (id *ExpenseID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ExpenseID(s)
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid expense id %s", raw)
	}
	*id = ExpenseID(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// UnmarshalJSON also accepts the legacy "description" field as the note.
func (e *Expense) UnmarshalJSON(data []byte) error {
	type plain Expense
	aux := struct {
		*plain
		Description *string `json:"description"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.Note == "" && aux.Description != nil {
		e.Note = *aux.Description
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(string(e.ID)) == "" {
		return ErrEmptyID
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(string(e.Category)) == "" {
		return ErrEmptyCategory
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(e.Note) > MaxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}
