package validation

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/stateforge/stateforge/pkg/models"
)

// decimalPattern accepts locale-independent decimals: optional sign,
// integer digits, optional fraction. No grouping separators, no
// exponent notation.
var decimalPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

type numberValidator struct{}

func (v *numberValidator) Validate(_ context.Context, action *models.PropertyChangeAction, pt *models.PropertyType, res *Result) error {
	appendCommonIssues(action, pt, res)

	raw := scalarValue(action)
	if raw == "" {
		return nil
	}

	if !decimalPattern.MatchString(raw) {
		res.Append(InvalidNumberFormat, raw)

		return nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		res.Append(InvalidNumberFormat, raw)

		return nil
	}

	if !pt.IsValidated {
		return nil
	}

	if pt.DecimalPlaces != nil && decimalPlaces(raw) > *pt.DecimalPlaces {
		res.Append(InvalidNumberDecimalPlaces, raw)
	}

	if (pt.MinNumber != nil && value < *pt.MinNumber) ||
		(pt.MaxNumber != nil && value > *pt.MaxNumber) {
		res.Append(NumberOutOfRange, raw)
	}

	return nil
}

// decimalPlaces counts significant fraction digits of a well-formed
// decimal string. Trailing zeros do not count against the budget.
func decimalPlaces(raw string) int {
	dot := strings.IndexByte(raw, '.')
	if dot < 0 {
		return 0
	}

	fraction := strings.TrimRight(raw[dot+1:], "0")

	return len(fraction)
}
