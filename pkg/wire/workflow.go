package wire

import (
	"fmt"

	"github.com/stateforge/stateforge/pkg/models"
)

// Workflow is the wire form of a full workflow definition, as stored
// and as exchanged with the import/export surface.
type Workflow struct {
	Name          string       `json:"n"`
	Description   string       `json:"d,omitempty"`
	States        []State      `json:"st"`
	Transitions   []Transition `json:"tr,omitempty"`
	Projects      []ProjectRef `json:"pr,omitempty"`
	ArtifactTypes []string     `json:"ty,omitempty"`
}

// State is the wire form of one lifecycle state.
type State struct {
	Name        string `json:"n"`
	Description string `json:"d,omitempty"`
	Initial     bool   `json:"in,omitempty"`
}

// Transition is the wire form of one transition.
type Transition struct {
	Name        string       `json:"n"`
	Description string       `json:"d,omitempty"`
	From        string       `json:"f"`
	To          string       `json:"to"`
	Permissions *Permissions `json:"pm,omitempty"`
	Triggers    []Trigger    `json:"tg,omitempty"`
}

// ProjectRef is the wire form of a project reference.
type ProjectRef struct {
	ID   int    `json:"i,omitempty"`
	Path string `json:"p,omitempty"`
}

// Decode converts a wire workflow into the domain model. Triggers whose
// action or condition carries an unknown tag are dropped from the
// in-memory model; the wire form retains them, so persisting the
// definition does not lose data written by newer engines.
func (w *Workflow) Decode() *models.WorkflowDefinition {
	def := &models.WorkflowDefinition{
		Name:        w.Name,
		Description: w.Description,
	}

	for _, s := range w.States {
		def.States = append(def.States, models.State{
			Name:        s.Name,
			Description: s.Description,
			IsInitial:   s.Initial,
		})
	}

	for _, t := range w.Transitions {
		transition := models.Transition{
			Name:        t.Name,
			Description: t.Description,
			FromState:   t.From,
			ToState:     t.To,
		}

		if t.Permissions != nil {
			transition.SkipPermissionCheck = t.Permissions.Skip
			for _, id := range t.Permissions.GroupIDs {
				transition.PermissionGroups = append(transition.PermissionGroups, models.PermissionGroup{ID: id})
			}
		}

		for _, trigger := range t.Triggers {
			decoded, ok := decodeTrigger(trigger)
			if ok {
				transition.Triggers = append(transition.Triggers, decoded)
			}
		}

		def.Transitions = append(def.Transitions, transition)
	}

	for _, p := range w.Projects {
		def.Projects = append(def.Projects, models.ProjectRef{ID: p.ID, Path: p.Path})
	}

	for _, name := range w.ArtifactTypes {
		def.ArtifactTypes = append(def.ArtifactTypes, models.ArtifactTypeRef{Name: name})
	}

	return def
}

// Encode converts a domain definition into its wire form.
func Encode(def *models.WorkflowDefinition) (*Workflow, error) {
	w := &Workflow{
		Name:        def.Name,
		Description: def.Description,
	}

	for _, s := range def.States {
		w.States = append(w.States, State{
			Name:        s.Name,
			Description: s.Description,
			Initial:     s.IsInitial,
		})
	}

	for _, t := range def.Transitions {
		transition := Transition{
			Name:        t.Name,
			Description: t.Description,
			From:        t.FromState,
			To:          t.ToState,
		}

		if t.SkipPermissionCheck || len(t.PermissionGroups) > 0 {
			perms := &Permissions{Skip: t.SkipPermissionCheck}
			for _, pg := range t.PermissionGroups {
				perms.GroupIDs = append(perms.GroupIDs, pg.ID)
			}

			transition.Permissions = perms
		}

		for _, trigger := range t.Triggers {
			encoded, err := encodeTrigger(trigger)
			if err != nil {
				return nil, fmt.Errorf("transition %q: %w", t.Name, err)
			}

			transition.Triggers = append(transition.Triggers, encoded)
		}

		w.Transitions = append(w.Transitions, transition)
	}

	for _, p := range def.Projects {
		w.Projects = append(w.Projects, ProjectRef{ID: p.ID, Path: p.Path})
	}

	for _, ref := range def.ArtifactTypes {
		w.ArtifactTypes = append(w.ArtifactTypes, ref.Name)
	}

	return w, nil
}

func decodeTrigger(t Trigger) (models.Trigger, bool) {
	trigger := models.Trigger{Name: t.Name}

	switch t.Phase {
	case PhaseAsync:
		trigger.Phase = models.PhaseAsync
	default:
		trigger.Phase = models.PhaseSync
	}

	if t.Condition == nil {
		trigger.Condition = models.AlwaysCondition{}
	} else {
		switch t.Condition.Tag {
		case TagAlways:
			trigger.Condition = models.AlwaysCondition{}
		case TagFromState:
			trigger.Condition = models.FromStateCondition{State: t.Condition.FromState.State}
		case TagArtifactType:
			trigger.Condition = models.ArtifactTypeCondition{ArtifactType: t.Condition.ArtifactType.ArtifactType}
		default:
			return models.Trigger{}, false
		}
	}

	switch t.Action.Tag {
	case TagPropertyChange:
		pc := t.Action.PropertyChange
		action := &models.PropertyChangeAction{
			PropertyTypeID: pc.PropertyTypeID,
			PropertyValue:  pc.Value,
		}

		for _, vv := range pc.ValidValues {
			action.ValidValues = append(action.ValidValues, models.ValidValueSelection{ID: vv.ID, Value: vv.Value})
		}

		if pc.UsersGroups != nil {
			ug := &models.UsersGroups{IncludeCurrentUser: pc.UsersGroups.IncludeCurrentUser}
			for _, e := range pc.UsersGroups.Entries {
				ug.Entries = append(ug.Entries, models.UserGroupEntry{
					ID:             e.ID,
					Name:           e.Name,
					IsGroup:        e.IsGroup,
					GroupProjectID: e.ProjectID,
				})
			}

			action.UsersGroups = ug
		}

		trigger.Action = action
	case TagNotify:
		trigger.Action = &models.NotifyAction{
			Subject:  t.Action.Notify.Subject,
			GroupIDs: t.Action.Notify.GroupIDs,
		}
	case TagGenerate:
		trigger.Action = &models.GenerateAction{
			ArtifactType: t.Action.Generate.ArtifactType,
			NamePrefix:   t.Action.Generate.NamePrefix,
		}
	default:
		return models.Trigger{}, false
	}

	return trigger, true
}

func encodeTrigger(t models.Trigger) (Trigger, error) {
	out := Trigger{Name: t.Name}

	if t.Phase == models.PhaseAsync {
		out.Phase = PhaseAsync
	} else {
		out.Phase = PhaseSync
	}

	switch cond := t.Condition.(type) {
	case nil, models.AlwaysCondition:
		out.Condition = &Condition{Tag: TagAlways}
	case models.FromStateCondition:
		out.Condition = &Condition{Tag: TagFromState, FromState: &FromStateCond{State: cond.State}}
	case models.ArtifactTypeCondition:
		out.Condition = &Condition{Tag: TagArtifactType, ArtifactType: &ArtifactTypeCond{ArtifactType: cond.ArtifactType}}
	default:
		return Trigger{}, fmt.Errorf("trigger %q: unsupported condition kind %q", t.Name, t.Condition.Kind())
	}

	switch action := t.Action.(type) {
	case *models.PropertyChangeAction:
		pc := &PropertyChange{
			PropertyTypeID: action.PropertyTypeID,
			Value:          action.PropertyValue,
		}

		for _, vv := range action.ValidValues {
			pc.ValidValues = append(pc.ValidValues, ValidValueRef{ID: vv.ID, Value: vv.Value})
		}

		if action.UsersGroups != nil {
			ug := &UsersGroups{IncludeCurrentUser: action.UsersGroups.IncludeCurrentUser}
			for _, e := range action.UsersGroups.Entries {
				ug.Entries = append(ug.Entries, UserGroupRef{
					ID:        e.ID,
					Name:      e.Name,
					IsGroup:   e.IsGroup,
					ProjectID: e.GroupProjectID,
				})
			}

			pc.UsersGroups = ug
		}

		out.Action = Action{Tag: TagPropertyChange, PropertyChange: pc}
	case *models.NotifyAction:
		out.Action = Action{Tag: TagNotify, Notify: &Notify{Subject: action.Subject, GroupIDs: action.GroupIDs}}
	case *models.GenerateAction:
		out.Action = Action{Tag: TagGenerate, Generate: &Generate{ArtifactType: action.ArtifactType, NamePrefix: action.NamePrefix}}
	default:
		return Trigger{}, fmt.Errorf("trigger %q: unsupported action kind", t.Name)
	}

	return out, nil
}
