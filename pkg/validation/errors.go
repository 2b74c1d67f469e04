// Package validation implements the workflow validation engine: the
// structural validator for imported definitions, the data validator
// that cross-references definitions against live system entities, and
// the per-primitive property value validators used by the transition
// pipeline.
package validation

// ErrorCode is a stable, localizable identifier for one validation
// failure. The engine never formats user-facing strings; callers map
// codes to display text.
type ErrorCode string

// Structural codes: the definition is internally inconsistent and is
// never persisted.
const (
	WorkflowNameEmpty                    ErrorCode = "WorkflowNameEmpty"
	WorkflowNameExceedsLimit             ErrorCode = "WorkflowNameExceedsLimit"
	WorkflowDescriptionExceedsLimit      ErrorCode = "WorkflowDescriptionExceedsLimit"
	WorkflowDoesNotContainAnyStates      ErrorCode = "WorkflowDoesNotContainAnyStates"
	NoInitialState                       ErrorCode = "NoInitialState"
	MultipleInitialStates                ErrorCode = "MultipleInitialStates"
	StatesCountExceedsLimit100           ErrorCode = "StatesCountExceedsLimit100"
	StateNameEmpty                       ErrorCode = "StateNameEmpty"
	StateNameNotUnique                   ErrorCode = "StateNameNotUnique"
	StateNameExceedsLimit                ErrorCode = "StateNameExceedsLimit"
	StateDescriptionExceedsLimit         ErrorCode = "StateDescriptionExceedsLimit"
	StateDoesNotHaveAnyTransitions       ErrorCode = "StateDoesNotHaveAnyTransitions"
	TransitionNameEmpty                  ErrorCode = "TransitionNameEmpty"
	TransitionNameExceedsLimit           ErrorCode = "TransitionNameExceedsLimit"
	TransitionDescriptionExceedsLimit    ErrorCode = "TransitionDescriptionExceedsLimit"
	TransitionStartStateNotSpecified     ErrorCode = "TransitionStartStateNotSpecified"
	TransitionEndStateNotSpecified       ErrorCode = "TransitionEndStateNotSpecified"
	TransitionFromAndToStatesSame        ErrorCode = "TransitionFromAndToStatesSame"
	TransitionStateNotFound              ErrorCode = "TransitionStateNotFound"
	TransitionCountOnStateExceedsLimit10 ErrorCode = "TransitionCountOnStateExceedsLimit10"
	TransitionNameNotUniqueOnState       ErrorCode = "TransitionNameNotUniqueOnState"
	ProjectNoSpecified                   ErrorCode = "ProjectNoSpecified"
	ProjectInvalidId                     ErrorCode = "ProjectInvalidId"
	ArtifactTypeNoSpecified              ErrorCode = "ArtifactTypeNoSpecified"
)

// Referential codes: the definition points at something absent in the
// live system. The caller decides whether to proceed with the resolved
// subset or abort.
const (
	ProjectNotFound ErrorCode = "ProjectNotFound"
	GroupsNotFound  ErrorCode = "GroupsNotFound"
)

// Value codes: one property-change action violates its property type's
// constraints. Only the offending transition is rejected.
const (
	NotChoicePropertyValidValuesNotApplicable     ErrorCode = "NotChoicePropertyValidValuesNotApplicable"
	NotUserPropertyUsersGroupsNotApplicable       ErrorCode = "NotUserPropertyUsersGroupsNotApplicable"
	RequiredPropertyValueEmpty                    ErrorCode = "RequiredPropertyValueEmpty"
	RequiredUserPropertyPropertyValueNotApplicable ErrorCode = "RequiredUserPropertyPropertyValueNotApplicable"
	InvalidNumberFormat                           ErrorCode = "InvalidNumberFormat"
	InvalidNumberDecimalPlaces                    ErrorCode = "InvalidNumberDecimalPlaces"
	NumberOutOfRange                              ErrorCode = "NumberOutOfRange"
	InvalidDateFormat                             ErrorCode = "InvalidDateFormat"
	DateOutOfRange                                ErrorCode = "DateOutOfRange"
	ChoicePropertyMultipleValidValuesNotAllowed   ErrorCode = "ChoicePropertyMultipleValidValuesNotAllowed"
	ChoiceValueSpecifiedAsNotValidated            ErrorCode = "ChoiceValueSpecifiedAsNotValidated"
	ValidValueNotFoundById                        ErrorCode = "ValidValueNotFoundById"
	ValidValueNotFoundByValue                     ErrorCode = "ValidValueNotFoundByValue"
	DuplicateValidValueFound                      ErrorCode = "DuplicateValidValueFound"
	UserNotFoundById                              ErrorCode = "UserNotFoundById"
	UserNotFoundByName                            ErrorCode = "UserNotFoundByName"
	GroupNotFoundById                             ErrorCode = "GroupNotFoundById"
	GroupNotFoundByName                           ErrorCode = "GroupNotFoundByName"
	DuplicateUserOrGroupFound                     ErrorCode = "DuplicateUserOrGroupFound"
)
