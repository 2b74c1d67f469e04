package validation

import (
	"fmt"
	"strings"

	"github.com/stateforge/stateforge/pkg/models"
)

// ValidateStructure checks a workflow definition for internal
// consistency: names and limits, the single-initial-state invariant,
// transition endpoints, per-state transition budgets and project /
// artifact-type references. It is pure and performs no lookups; every
// check runs regardless of earlier failures.
func ValidateStructure(def *models.WorkflowDefinition) *Result {
	res := NewResult()
	if def == nil {
		panic("validation: nil workflow definition")
	}

	validateWorkflowHeader(def, res)
	validateStates(def, res)
	validateTransitions(def, res)
	validateStateTransitionBudgets(def, res)
	validateProjectRefs(def, res)
	validateArtifactTypeRefs(def, res)

	return res
}

func validateWorkflowHeader(def *models.WorkflowDefinition, res *Result) {
	if strings.TrimSpace(def.Name) == "" {
		res.Append(WorkflowNameEmpty, "workflow name is required")
	} else if len(def.Name) > models.MaxWorkflowNameLength {
		res.Append(WorkflowNameExceedsLimit, def.Name)
	}

	if len(def.Description) > models.MaxDescriptionLength {
		res.Append(WorkflowDescriptionExceedsLimit, def.Name)
	}
}

func validateStates(def *models.WorkflowDefinition, res *Result) {
	if len(def.States) == 0 {
		res.Append(WorkflowDoesNotContainAnyStates, def.Name)

		return
	}

	if len(def.States) > models.MaxStatesPerWorkflow {
		res.Append(StatesCountExceedsLimit100, fmt.Sprintf("%d states", len(def.States)))
	}

	initials := 0
	seen := make(map[string]bool, len(def.States))

	for _, state := range def.States {
		if state.IsInitial {
			initials++
		}

		if strings.TrimSpace(state.Name) == "" {
			res.Append(StateNameEmpty, "state name is required")
		} else {
			if seen[state.Name] {
				res.Append(StateNameNotUnique, state.Name)
			}

			seen[state.Name] = true

			if len(state.Name) > models.MaxStateNameLength {
				res.Append(StateNameExceedsLimit, state.Name)
			}
		}

		if len(state.Description) > models.MaxDescriptionLength {
			res.Append(StateDescriptionExceedsLimit, state.Name)
		}
	}

	switch {
	case initials == 0:
		res.Append(NoInitialState, def.Name)
	case initials > 1:
		res.Append(MultipleInitialStates, fmt.Sprintf("%d initial states", initials))
	}
}

func validateTransitions(def *models.WorkflowDefinition, res *Result) {
	declared := make(map[string]bool, len(def.States))
	for _, state := range def.States {
		declared[state.Name] = true
	}

	for _, tr := range def.Transitions {
		if strings.TrimSpace(tr.Name) == "" {
			res.Append(TransitionNameEmpty, "transition name is required")
		} else if len(tr.Name) > models.MaxTransitionNameLength {
			res.Append(TransitionNameExceedsLimit, tr.Name)
		}

		if len(tr.Description) > models.MaxDescriptionLength {
			res.Append(TransitionDescriptionExceedsLimit, tr.Name)
		}

		fromSpecified := strings.TrimSpace(tr.FromState) != ""
		toSpecified := strings.TrimSpace(tr.ToState) != ""

		if !fromSpecified {
			res.Append(TransitionStartStateNotSpecified, tr.Name)
		}

		if !toSpecified {
			res.Append(TransitionEndStateNotSpecified, tr.Name)
		}

		if fromSpecified && toSpecified && tr.FromState == tr.ToState {
			res.Append(TransitionFromAndToStatesSame, tr.Name)
		}

		if fromSpecified && !declared[tr.FromState] {
			res.Append(TransitionStateNotFound, fmt.Sprintf("%s: %s", tr.Name, tr.FromState))
		}

		if toSpecified && !declared[tr.ToState] {
			res.Append(TransitionStateNotFound, fmt.Sprintf("%s: %s", tr.Name, tr.ToState))
		}
	}
}

// validateStateTransitionBudgets aggregates transitions per incident
// state: every state needs at least one, no state may carry more than
// the limit, and transition names must be unique among the transitions
// touching one state.
func validateStateTransitionBudgets(def *models.WorkflowDefinition, res *Result) {
	if len(def.States) == 0 {
		return
	}

	for _, state := range def.States {
		incident := def.TransitionsForState(state.Name)

		if len(incident) == 0 {
			res.Append(StateDoesNotHaveAnyTransitions, state.Name)

			continue
		}

		if len(incident) > models.MaxTransitionsPerState {
			res.Append(TransitionCountOnStateExceedsLimit10, state.Name)
		}

		names := make(map[string]bool, len(incident))
		for _, tr := range incident {
			if tr.Name == "" {
				continue
			}

			if names[tr.Name] {
				res.Append(TransitionNameNotUniqueOnState, fmt.Sprintf("%s: %s", state.Name, tr.Name))
			}

			names[tr.Name] = true
		}
	}
}

func validateProjectRefs(def *models.WorkflowDefinition, res *Result) {
	for _, ref := range def.Projects {
		switch {
		case ref.ID == 0 && strings.TrimSpace(ref.Path) == "":
			res.Append(ProjectNoSpecified, "project reference needs an id or a path")
		case ref.ID < 0:
			res.Append(ProjectInvalidId, fmt.Sprintf("%d", ref.ID))
		}
	}
}

func validateArtifactTypeRefs(def *models.WorkflowDefinition, res *Result) {
	for _, ref := range def.ArtifactTypes {
		if strings.TrimSpace(ref.Name) == "" {
			res.Append(ArtifactTypeNoSpecified, "artifact type reference needs a name")
		}
	}
}
