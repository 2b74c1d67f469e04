package validation

import (
	"context"
	"strconv"
	"time"

	"github.com/stateforge/stateforge/pkg/models"
)

type dateValidator struct {
	// now is overridable so relative-day offsets are deterministic in
	// tests.
	now func() time.Time
}

func (v *dateValidator) Validate(_ context.Context, action *models.PropertyChangeAction, pt *models.PropertyType, res *Result) error {
	appendCommonIssues(action, pt, res)

	raw := scalarValue(action)
	if raw == "" {
		return nil
	}

	value, ok := v.parse(raw)
	if !ok {
		res.Append(InvalidDateFormat, raw)

		return nil
	}

	if !pt.IsValidated {
		return nil
	}

	// Bounds are inclusive: a value equal to MinDate or MaxDate is
	// legal.
	if (pt.MinDate != nil && value.Before(*pt.MinDate)) ||
		(pt.MaxDate != nil && value.After(*pt.MaxDate)) {
		res.Append(DateOutOfRange, raw)
	}

	return nil
}

// parse accepts the two encodings of a date action: an ISO-8601 date
// and a signed integer meaning "shift by N days from now".
func (v *dateValidator) parse(raw string) (time.Time, bool) {
	if days, err := strconv.Atoi(raw); err == nil {
		now := time.Now().UTC()
		if v.now != nil {
			now = v.now()
		}

		return now.AddDate(0, 0, days).Truncate(24 * time.Hour), true
	}

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}

	return time.Time{}, false
}
