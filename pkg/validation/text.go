package validation

import (
	"context"

	"github.com/stateforge/stateforge/pkg/models"
)

// textValidator has no type-specific constraints; only the common
// cross-type checks apply.
type textValidator struct{}

func (v *textValidator) Validate(_ context.Context, action *models.PropertyChangeAction, pt *models.PropertyType, res *Result) error {
	appendCommonIssues(action, pt, res)

	return nil
}
