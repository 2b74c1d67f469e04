package models

import "time"

// PrimitiveType is the base data kind of a custom artifact property.
type PrimitiveType string

const (
	PrimitiveText   PrimitiveType = "text"
	PrimitiveNumber PrimitiveType = "number"
	PrimitiveDate   PrimitiveType = "date"
	PrimitiveChoice PrimitiveType = "choice"
	PrimitiveUser   PrimitiveType = "user"
)

// IntrinsicField marks property types that map onto artifact identity
// fields rather than custom properties. Identity changes are applied to
// the artifact record itself before the remaining property changes are
// persisted.
type IntrinsicField int

const (
	IntrinsicNone IntrinsicField = iota
	IntrinsicName
	IntrinsicDescription
)

// PropertyType describes one artifact property and its constraints. It
// is supplied by the metadata collaborator and read-only to the engine.
type PropertyType struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Primitive   PrimitiveType  `json:"primitive"`
	Intrinsic   IntrinsicField `json:"intrinsic,omitempty"`
	IsRequired  bool           `json:"is_required"`
	IsValidated bool           `json:"is_validated"`

	// Number constraints.
	MinNumber     *float64 `json:"min_number,omitempty"`
	MaxNumber     *float64 `json:"max_number,omitempty"`
	DecimalPlaces *int     `json:"decimal_places,omitempty"`

	// Date constraints.
	MinDate *time.Time `json:"min_date,omitempty"`
	MaxDate *time.Time `json:"max_date,omitempty"`

	// Choice constraints.
	ValidValues       []ValidValue `json:"valid_values,omitempty"`
	IsMultipleAllowed bool         `json:"is_multiple_allowed,omitempty"`
}

// ValidValue is one allowed selection of a choice property.
type ValidValue struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

// PropertyChangeAction is a proposed change to a single artifact
// property. Exactly one payload applies per primitive: PropertyValue
// for scalars, ValidValues for choice selections, UsersGroups for user
// properties.
type PropertyChangeAction struct {
	PropertyTypeID int                   `json:"property_type_id"`
	PropertyValue  *string               `json:"property_value,omitempty"`
	ValidValues    []ValidValueSelection `json:"valid_values,omitempty"`
	UsersGroups    *UsersGroups          `json:"users_groups,omitempty"`
}

// ValidValueSelection selects a choice value either by stable id or by
// its display text, depending on the caller's match mode.
type ValidValueSelection struct {
	ID    int    `json:"id,omitempty"`
	Value string `json:"value,omitempty"`
}

// UsersGroups is the payload of a user-property change: explicit user
// and group entries plus an optional marker for the acting user.
type UsersGroups struct {
	Entries            []UserGroupEntry `json:"entries,omitempty"`
	IncludeCurrentUser bool             `json:"include_current_user,omitempty"`
}

// UserGroupEntry references one user or group. Group entries may be
// scoped to a project.
type UserGroupEntry struct {
	ID             int    `json:"id,omitempty"`
	Name           string `json:"name,omitempty"`
	IsGroup        bool   `json:"is_group"`
	GroupProjectID *int   `json:"group_project_id,omitempty"`
}

// IsEmpty reports whether the payload carries no users, no groups and
// no current-user marker.
func (ug *UsersGroups) IsEmpty() bool {
	return ug == nil || (len(ug.Entries) == 0 && !ug.IncludeCurrentUser)
}
