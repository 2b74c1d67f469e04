package validation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stateforge/stateforge/pkg/models"
)

type choiceValidator struct {
	mode MatchMode
}

func (v *choiceValidator) Validate(_ context.Context, action *models.PropertyChangeAction, pt *models.PropertyType, res *Result) error {
	appendCommonIssues(action, pt, res)

	if !pt.IsMultipleAllowed && len(action.ValidValues) > 1 {
		res.Append(ChoicePropertyMultipleValidValuesNotAllowed, pt.Name)
	}

	if pt.IsValidated && scalarValue(action) != "" {
		res.Append(ChoiceValueSpecifiedAsNotValidated, pt.Name)
	}

	// Duplicate detection keys on resolved identity: two distinct
	// inputs that resolve to the same valid value are duplicates, while
	// distinct ids sharing display text are not.
	seen := make(map[int]bool, len(action.ValidValues))

	for _, sel := range action.ValidValues {
		resolved, ok := v.resolve(sel, pt)
		if !ok {
			if v.mode == MatchByID {
				res.Append(ValidValueNotFoundById, strconv.Itoa(sel.ID))
			} else {
				res.Append(ValidValueNotFoundByValue, sel.Value)
			}

			continue
		}

		if seen[resolved.ID] {
			res.Append(DuplicateValidValueFound, fmt.Sprintf("%s: %s", pt.Name, resolved.Value))

			continue
		}

		seen[resolved.ID] = true
	}

	return nil
}

func (v *choiceValidator) resolve(sel models.ValidValueSelection, pt *models.PropertyType) (models.ValidValue, bool) {
	for _, vv := range pt.ValidValues {
		if v.mode == MatchByID {
			if vv.ID == sel.ID {
				return vv, true
			}
		} else if vv.Value == sel.Value {
			return vv, true
		}
	}

	return models.ValidValue{}, false
}
