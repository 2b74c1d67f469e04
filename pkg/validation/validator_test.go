package validation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateforge/stateforge/pkg/directory"
	"github.com/stateforge/stateforge/pkg/models"
	"github.com/stateforge/stateforge/pkg/validation"
)

func ptr[T any](v T) *T {
	return &v
}

func validateValue(t *testing.T, pt models.PropertyType, action models.PropertyChangeAction, mode validation.MatchMode, dir directory.Directory) *validation.Result {
	t.Helper()

	v, err := validation.ForPrimitive(pt.Primitive, mode, dir)
	require.NoError(t, err)

	res := validation.NewResult()
	require.NoError(t, v.Validate(context.Background(), &action, &pt, res))

	return res
}

func TestForPrimitive_UnknownPrimitive(t *testing.T) {
	t.Parallel()

	_, err := validation.ForPrimitive("geo", validation.MatchByID, nil)
	assert.Error(t, err)
}

func TestForPrimitive_UserRequiresDirectory(t *testing.T) {
	t.Parallel()

	_, err := validation.ForPrimitive(models.PrimitiveUser, validation.MatchByID, nil)
	assert.Error(t, err)
}

func TestNumberValidator(t *testing.T) {
	t.Parallel()

	constrained := models.PropertyType{
		ID:            1,
		Name:          "Estimate",
		Primitive:     models.PrimitiveNumber,
		IsValidated:   true,
		MinNumber:     ptr(0.0),
		MaxNumber:     ptr(20.20),
		DecimalPlaces: ptr(2),
	}

	tests := []struct {
		name     string
		pt       models.PropertyType
		value    string
		expected []validation.ErrorCode
	}{
		{name: "in range", pt: constrained, value: "12.5", expected: nil},
		{name: "at max boundary", pt: constrained, value: "20.20", expected: nil},
		{name: "at min boundary", pt: constrained, value: "0", expected: nil},
		{
			name:     "just above max",
			pt:       constrained,
			value:    "20.21",
			expected: []validation.ErrorCode{validation.NumberOutOfRange},
		},
		{
			name:     "below min",
			pt:       constrained,
			value:    "-0.5",
			expected: []validation.ErrorCode{validation.NumberOutOfRange},
		},
		{
			name:     "too many decimal places",
			pt:       constrained,
			value:    "1.005",
			expected: []validation.ErrorCode{validation.InvalidNumberDecimalPlaces},
		},
		{name: "trailing zeros do not count", pt: constrained, value: "1.2500", expected: nil},
		{
			name:     "grouping separator rejected",
			pt:       constrained,
			value:    "1,5",
			expected: []validation.ErrorCode{validation.InvalidNumberFormat},
		},
		{
			name:     "exponent rejected",
			pt:       constrained,
			value:    "1e3",
			expected: []validation.ErrorCode{validation.InvalidNumberFormat},
		},
		{
			name: "constraints skipped when not validated",
			pt: models.PropertyType{
				ID:        1,
				Name:      "Estimate",
				Primitive: models.PrimitiveNumber,
				MaxNumber: ptr(20.20),
			},
			value:    "99",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := validateValue(t, tt.pt, models.PropertyChangeAction{
				PropertyTypeID: tt.pt.ID,
				PropertyValue:  ptr(tt.value),
			}, validation.MatchByID, nil)

			require.Equal(t, len(tt.expected), res.Len(), "issues: %v", res.Issues())
			for _, code := range tt.expected {
				assert.True(t, res.Contains(code))
			}
		})
	}
}

func TestDateValidator(t *testing.T) {
	t.Parallel()

	window := models.PropertyType{
		ID:          2,
		Name:        "Due",
		Primitive:   models.PrimitiveDate,
		IsValidated: true,
		MinDate:     ptr(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		MaxDate:     ptr(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)),
	}

	tests := []struct {
		name     string
		value    string
		expected []validation.ErrorCode
	}{
		{name: "iso date inside window", value: "2026-06-15", expected: nil},
		{name: "at min boundary", value: "2026-01-01", expected: nil},
		{name: "at max boundary", value: "2026-12-31", expected: nil},
		{name: "before window", value: "2025-12-31", expected: []validation.ErrorCode{validation.DateOutOfRange}},
		{name: "after window", value: "2027-01-01", expected: []validation.ErrorCode{validation.DateOutOfRange}},
		{name: "rfc3339 accepted", value: "2026-06-15T10:00:00Z", expected: nil},
		{name: "garbage rejected", value: "next tuesday", expected: []validation.ErrorCode{validation.InvalidDateFormat}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := validateValue(t, window, models.PropertyChangeAction{
				PropertyTypeID: window.ID,
				PropertyValue:  ptr(tt.value),
			}, validation.MatchByID, nil)

			require.Equal(t, len(tt.expected), res.Len(), "issues: %v", res.Issues())
			for _, code := range tt.expected {
				assert.True(t, res.Contains(code))
			}
		})
	}

	t.Run("relative day shift parses", func(t *testing.T) {
		t.Parallel()

		open := models.PropertyType{ID: 2, Name: "Due", Primitive: models.PrimitiveDate}

		res := validateValue(t, open, models.PropertyChangeAction{
			PropertyTypeID: open.ID,
			PropertyValue:  ptr("-14"),
		}, validation.MatchByID, nil)

		assert.False(t, res.HasErrors())
	})
}

func TestChoiceValidator(t *testing.T) {
	t.Parallel()

	severity := models.PropertyType{
		ID:        3,
		Name:      "Severity",
		Primitive: models.PrimitiveChoice,
		ValidValues: []models.ValidValue{
			{ID: 10, Value: "Low"},
			{ID: 11, Value: "High"},
		},
	}

	t.Run("selection by id", func(t *testing.T) {
		t.Parallel()

		res := validateValue(t, severity, models.PropertyChangeAction{
			PropertyTypeID: severity.ID,
			ValidValues:    []models.ValidValueSelection{{ID: 10}},
		}, validation.MatchByID, nil)

		assert.False(t, res.HasErrors())
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		res := validateValue(t, severity, models.PropertyChangeAction{
			PropertyTypeID: severity.ID,
			ValidValues:    []models.ValidValueSelection{{ID: 99}},
		}, validation.MatchByID, nil)

		assert.True(t, res.Contains(validation.ValidValueNotFoundById))
	})

	t.Run("unknown value text", func(t *testing.T) {
		t.Parallel()

		res := validateValue(t, severity, models.PropertyChangeAction{
			PropertyTypeID: severity.ID,
			ValidValues:    []models.ValidValueSelection{{Value: "Critical"}},
		}, validation.MatchByName, nil)

		assert.True(t, res.Contains(validation.ValidValueNotFoundByValue))
	})

	t.Run("multiple selections need IsMultipleAllowed", func(t *testing.T) {
		t.Parallel()

		res := validateValue(t, severity, models.PropertyChangeAction{
			PropertyTypeID: severity.ID,
			ValidValues:    []models.ValidValueSelection{{ID: 10}, {ID: 11}},
		}, validation.MatchByID, nil)

		assert.True(t, res.Contains(validation.ChoicePropertyMultipleValidValuesNotAllowed))
	})

	t.Run("duplicates key on resolved identity", func(t *testing.T) {
		t.Parallel()

		multi := severity
		multi.IsMultipleAllowed = true

		res := validateValue(t, multi, models.PropertyChangeAction{
			PropertyTypeID: multi.ID,
			ValidValues:    []models.ValidValueSelection{{ID: 10}, {ID: 10}},
		}, validation.MatchByID, nil)

		require.True(t, res.HasErrors())
		assert.True(t, res.Contains(validation.DuplicateValidValueFound))
		assert.Equal(t, 1, res.Len())
	})

	t.Run("scalar value on validated choice", func(t *testing.T) {
		t.Parallel()

		validated := severity
		validated.IsValidated = true

		res := validateValue(t, validated, models.PropertyChangeAction{
			PropertyTypeID: validated.ID,
			PropertyValue:  ptr("Low"),
		}, validation.MatchByID, nil)

		assert.True(t, res.Contains(validation.ChoiceValueSpecifiedAsNotValidated))
	})
}

func testDirectory() *directory.InMemoryDirectory {
	dir := directory.NewInMemoryDirectory()
	dir.AddUser(directory.User{ID: 1, Name: "alice"})
	dir.AddUser(directory.User{ID: 2, Name: "bob"})
	dir.AddGroup(directory.Group{ID: 30, Name: "reviewers"})
	dir.AddGroup(directory.Group{ID: 31, Name: "leads", ProjectID: ptr(7)})
	dir.AddProject(directory.Project{ID: 7, Path: "tools/forge"})
	dir.AddProject(directory.Project{ID: 8, Path: "tools/anvil"})

	return dir
}

func TestUserValidator(t *testing.T) {
	t.Parallel()

	assignee := models.PropertyType{ID: 4, Name: "Assignee", Primitive: models.PrimitiveUser}

	t.Run("known user and group by id", func(t *testing.T) {
		t.Parallel()

		res := validateValue(t, assignee, models.PropertyChangeAction{
			PropertyTypeID: assignee.ID,
			UsersGroups: &models.UsersGroups{Entries: []models.UserGroupEntry{
				{ID: 1},
				{ID: 30, IsGroup: true},
			}},
		}, validation.MatchByID, testDirectory())

		assert.False(t, res.HasErrors())
	})

	t.Run("unknown user by id", func(t *testing.T) {
		t.Parallel()

		res := validateValue(t, assignee, models.PropertyChangeAction{
			PropertyTypeID: assignee.ID,
			UsersGroups: &models.UsersGroups{Entries: []models.UserGroupEntry{
				{ID: 42},
			}},
		}, validation.MatchByID, testDirectory())

		assert.True(t, res.Contains(validation.UserNotFoundById))
	})

	t.Run("unknown user by name", func(t *testing.T) {
		t.Parallel()

		res := validateValue(t, assignee, models.PropertyChangeAction{
			PropertyTypeID: assignee.ID,
			UsersGroups: &models.UsersGroups{Entries: []models.UserGroupEntry{
				{Name: "mallory"},
			}},
		}, validation.MatchByName, testDirectory())

		assert.True(t, res.Contains(validation.UserNotFoundByName))
	})

	t.Run("duplicate users detected independently of groups", func(t *testing.T) {
		t.Parallel()

		res := validateValue(t, assignee, models.PropertyChangeAction{
			PropertyTypeID: assignee.ID,
			UsersGroups: &models.UsersGroups{Entries: []models.UserGroupEntry{
				{ID: 1},
				{ID: 1},
				{ID: 30, IsGroup: true},
			}},
		}, validation.MatchByID, testDirectory())

		require.True(t, res.HasErrors())
		assert.True(t, res.Contains(validation.DuplicateUserOrGroupFound))
		assert.Equal(t, 1, res.Len())
	})

	t.Run("scoped group name only matches same project", func(t *testing.T) {
		t.Parallel()

		res := validateValue(t, assignee, models.PropertyChangeAction{
			PropertyTypeID: assignee.ID,
			UsersGroups: &models.UsersGroups{Entries: []models.UserGroupEntry{
				{Name: "leads", IsGroup: true, GroupProjectID: ptr(7)},
			}},
		}, validation.MatchByName, testDirectory())

		assert.False(t, res.HasErrors())
	})

	t.Run("unscoped entry does not match project group", func(t *testing.T) {
		t.Parallel()

		res := validateValue(t, assignee, models.PropertyChangeAction{
			PropertyTypeID: assignee.ID,
			UsersGroups: &models.UsersGroups{Entries: []models.UserGroupEntry{
				{Name: "leads", IsGroup: true},
			}},
		}, validation.MatchByName, testDirectory())

		assert.True(t, res.Contains(validation.GroupNotFoundByName))
	})
}

func TestCommonIssues(t *testing.T) {
	t.Parallel()

	t.Run("valid values on non-choice property", func(t *testing.T) {
		t.Parallel()

		pt := models.PropertyType{ID: 5, Name: "Notes", Primitive: models.PrimitiveText}

		res := validateValue(t, pt, models.PropertyChangeAction{
			PropertyTypeID: pt.ID,
			ValidValues:    []models.ValidValueSelection{{ID: 1}},
		}, validation.MatchByID, nil)

		assert.True(t, res.Contains(validation.NotChoicePropertyValidValuesNotApplicable))
	})

	t.Run("users groups on non-user property", func(t *testing.T) {
		t.Parallel()

		pt := models.PropertyType{ID: 5, Name: "Notes", Primitive: models.PrimitiveText}

		res := validateValue(t, pt, models.PropertyChangeAction{
			PropertyTypeID: pt.ID,
			UsersGroups:    &models.UsersGroups{IncludeCurrentUser: true},
		}, validation.MatchByID, nil)

		assert.True(t, res.Contains(validation.NotUserPropertyUsersGroupsNotApplicable))
	})

	t.Run("required scalar empty", func(t *testing.T) {
		t.Parallel()

		pt := models.PropertyType{ID: 5, Name: "Notes", Primitive: models.PrimitiveText, IsRequired: true}

		res := validateValue(t, pt, models.PropertyChangeAction{
			PropertyTypeID: pt.ID,
			PropertyValue:  ptr("   "),
		}, validation.MatchByID, nil)

		require.True(t, res.HasErrors())
		assert.True(t, res.Contains(validation.RequiredPropertyValueEmpty))
	})

	t.Run("required user property with empty payload", func(t *testing.T) {
		t.Parallel()

		pt := models.PropertyType{ID: 4, Name: "Assignee", Primitive: models.PrimitiveUser, IsRequired: true}

		res := validateValue(t, pt, models.PropertyChangeAction{
			PropertyTypeID: pt.ID,
			UsersGroups:    &models.UsersGroups{},
		}, validation.MatchByID, testDirectory())

		require.True(t, res.HasErrors())
		assert.Equal(t, 1, res.Len())
		assert.True(t, res.Contains(validation.RequiredPropertyValueEmpty))
	})

	t.Run("required user property with scalar payload", func(t *testing.T) {
		t.Parallel()

		pt := models.PropertyType{ID: 4, Name: "Assignee", Primitive: models.PrimitiveUser, IsRequired: true}

		res := validateValue(t, pt, models.PropertyChangeAction{
			PropertyTypeID: pt.ID,
			PropertyValue:  ptr("alice"),
		}, validation.MatchByID, testDirectory())

		assert.True(t, res.Contains(validation.RequiredUserPropertyPropertyValueNotApplicable))
	})

	t.Run("current user marker satisfies required", func(t *testing.T) {
		t.Parallel()

		pt := models.PropertyType{ID: 4, Name: "Assignee", Primitive: models.PrimitiveUser, IsRequired: true}

		res := validateValue(t, pt, models.PropertyChangeAction{
			PropertyTypeID: pt.ID,
			UsersGroups:    &models.UsersGroups{IncludeCurrentUser: true},
		}, validation.MatchByID, testDirectory())

		assert.False(t, res.HasErrors())
	})
}
