package models

// TriggerPhase separates triggers that run inside the transition
// transaction from those dispatched after commit.
type TriggerPhase string

const (
	// PhaseSync triggers mutate artifact properties; any failure
	// rejects the whole transition.
	PhaseSync TriggerPhase = "sync"
	// PhaseAsync triggers run after commit; failures are reported but
	// never roll the transition back.
	PhaseAsync TriggerPhase = "async"
)

// ActionKind discriminates the closed set of trigger actions.
type ActionKind string

const (
	ActionKindPropertyChange ActionKind = "property_change"
	ActionKindNotify         ActionKind = "notify"
	ActionKindGenerate       ActionKind = "generate"
)

// Action is the closed sum of trigger actions. Executors dispatch on
// Kind rather than on runtime type identity.
type Action interface {
	Kind() ActionKind
}

func (a *PropertyChangeAction) Kind() ActionKind { return ActionKindPropertyChange }

// NotifyAction sends a notification to a set of groups after the
// transition commits.
type NotifyAction struct {
	Subject  string `json:"subject"`
	GroupIDs []int  `json:"group_ids,omitempty"`
}

func (a *NotifyAction) Kind() ActionKind { return ActionKindNotify }

// GenerateAction creates a child artifact of the given type after the
// transition commits.
type GenerateAction struct {
	ArtifactType string `json:"artifact_type"`
	NamePrefix   string `json:"name_prefix,omitempty"`
}

func (a *GenerateAction) Kind() ActionKind { return ActionKindGenerate }

// ConditionKind discriminates the closed set of trigger conditions.
type ConditionKind string

const (
	ConditionKindAlways       ConditionKind = "always"
	ConditionKindFromState    ConditionKind = "from_state"
	ConditionKindArtifactType ConditionKind = "artifact_type"
)

// Condition gates whether a trigger's action applies to a given
// transition request.
type Condition interface {
	Kind() ConditionKind
}

// AlwaysCondition applies unconditionally.
type AlwaysCondition struct{}

func (AlwaysCondition) Kind() ConditionKind { return ConditionKindAlways }

// FromStateCondition applies only when the artifact is leaving the
// named state.
type FromStateCondition struct {
	State string `json:"state"`
}

func (FromStateCondition) Kind() ConditionKind { return ConditionKindFromState }

// ArtifactTypeCondition applies only to artifacts of the named type.
type ArtifactTypeCondition struct {
	ArtifactType string `json:"artifact_type"`
}

func (ArtifactTypeCondition) Kind() ConditionKind { return ConditionKindArtifactType }

// Trigger binds a gated action to a transition. Phase decides the
// failure policy: sync triggers are all-or-nothing with the state
// change, async triggers are best-effort after commit.
type Trigger struct {
	Name      string       `json:"name"`
	Phase     TriggerPhase `json:"phase"`
	Condition Condition    `json:"-"`
	Action    Action       `json:"-"`
}
