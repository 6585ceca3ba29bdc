package controls

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

const (
	// ISODate is the wire format for dates.
	ISODate = "2006-01-02"
	// DisplayDate is the format shown to users.
	DisplayDate = "02-01-2006"
)

// Date holds a calendar date without time of day. Like a calendar widget it
// starts on the supplied day rather than empty.
type Date struct {
	base
	value time.Time
	set   bool
}

// NewDate builds a date control initialised to today. A zero today leaves the
// control unset.
func NewDate(field schema.Field, today time.Time) *Date {
	c := &Date{base: newBase(field)}
	if !today.IsZero() {
		c.value = truncateDay(today)
		c.set = true
	}
	return c
}

func (c *Date) Kind() Kind {
	return KindDate
}

// Time returns the date and whether one is set.
func (c *Date) Time() (time.Time, bool) {
	return c.value, c.set
}

// Display renders the date as dd-MM-yyyy.
func (c *Date) Display() string {
	if !c.set {
		return ""
	}
	return c.value.Format(DisplayDate)
}

// Value returns the ISO date string, or nil when unset.
func (c *Date) Value() any {
	if !c.set {
		return nil
	}
	return c.value.Format(ISODate)
}

// SetValue accepts time.Time or strings in ISO, dd-MM-yyyy, or RFC3339 form.
func (c *Date) SetValue(value any) error {
	switch v := value.(type) {
	case nil:
		c.assign(time.Time{}, false)
		return nil
	case time.Time:
		c.assign(truncateDay(v), !v.IsZero())
		return nil
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			c.assign(time.Time{}, false)
			return nil
		}
		for _, layout := range []string{ISODate, DisplayDate, time.RFC3339, "2006-01-02T15:04:05"} {
			if parsed, err := time.Parse(layout, raw); err == nil {
				c.assign(truncateDay(parsed), true)
				return nil
			}
		}
		return fmt.Errorf("%w: date %q on %s", ErrInvalidValue, raw, c.Key())
	default:
		return fmt.Errorf("%w: date of type %T on %s", ErrInvalidValue, value, c.Key())
	}
}

func (c *Date) IsEmpty() bool {
	return !c.set
}

func (c *Date) Clear() {
	c.assign(time.Time{}, false)
}

func (c *Date) assign(value time.Time, set bool) {
	if set == c.set && value.Equal(c.value) {
		return
	}
	c.value, c.set = value, set
	c.notify(c)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
