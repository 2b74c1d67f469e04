package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/stateforge/stateforge/pkg/directory"
	"github.com/stateforge/stateforge/pkg/models"
)

// MatchMode controls how referenced entities (valid values, users,
// groups) are matched during validation. Definitions that predate
// persistence carry no stable ids, so importers match by display name
// or value text; runtime transitions against stored metadata match by
// id.
type MatchMode int

const (
	// MatchByID resolves references through stable identifiers.
	MatchByID MatchMode = iota
	// MatchByName resolves references through display names / value
	// text. Used when referenced ids cannot be assumed stable.
	MatchByName
)

// PropertyValidator decides whether one proposed property change is
// legal for its property type. Expected invalid input is appended to
// res, never returned as an error; the error return is reserved for
// infrastructure failures (directory lookups).
type PropertyValidator interface {
	Validate(ctx context.Context, action *models.PropertyChangeAction, pt *models.PropertyType, res *Result) error
}

// ForPrimitive selects the validator for a primitive property type.
// dir is only consulted by the user validator and may be nil for the
// others.
func ForPrimitive(primitive models.PrimitiveType, mode MatchMode, dir directory.Directory) (PropertyValidator, error) {
	switch primitive {
	case models.PrimitiveText:
		return &textValidator{}, nil
	case models.PrimitiveNumber:
		return &numberValidator{}, nil
	case models.PrimitiveDate:
		return &dateValidator{}, nil
	case models.PrimitiveChoice:
		return &choiceValidator{mode: mode}, nil
	case models.PrimitiveUser:
		if dir == nil {
			return nil, fmt.Errorf("user property validation requires a directory")
		}

		return &userValidator{mode: mode, dir: dir}, nil
	default:
		return nil, fmt.Errorf("unknown primitive type %q", primitive)
	}
}

// appendCommonIssues runs the cross-type checks shared by every
// primitive: payloads that do not belong to the primitive, and the
// required-but-empty rule. These run before type-specific checks and
// never suppress them.
func appendCommonIssues(action *models.PropertyChangeAction, pt *models.PropertyType, res *Result) {
	if pt.Primitive != models.PrimitiveChoice && len(action.ValidValues) > 0 {
		res.Append(NotChoicePropertyValidValuesNotApplicable, pt.Name)
	}

	if pt.Primitive != models.PrimitiveUser && action.UsersGroups != nil {
		res.Append(NotUserPropertyUsersGroupsNotApplicable, pt.Name)
	}

	if !pt.IsRequired {
		return
	}

	if pt.Primitive == models.PrimitiveUser {
		switch {
		case scalarValue(action) != "":
			res.Append(RequiredUserPropertyPropertyValueNotApplicable, pt.Name)
		case action.UsersGroups.IsEmpty():
			res.Append(RequiredPropertyValueEmpty, pt.Name)
		}

		return
	}

	if pt.Primitive == models.PrimitiveChoice {
		if len(action.ValidValues) == 0 && scalarValue(action) == "" {
			res.Append(RequiredPropertyValueEmpty, pt.Name)
		}

		return
	}

	if scalarValue(action) == "" {
		res.Append(RequiredPropertyValueEmpty, pt.Name)
	}
}

// scalarValue returns the trimmed scalar payload, or "" when absent.
func scalarValue(action *models.PropertyChangeAction) string {
	if action.PropertyValue == nil {
		return ""
	}

	return strings.TrimSpace(*action.PropertyValue)
}
