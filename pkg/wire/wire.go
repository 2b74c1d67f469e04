// Package wire defines the compact serialized representation of
// workflow definitions: tagged condition/action/trigger elements and
// permission sets. The abbreviated field names are part of the stable
// format and must round-trip byte-for-byte against previously stored
// definitions. New variants may be added behind new tags without
// breaking deserialization of existing payloads.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Action discriminator tags.
const (
	TagPropertyChange = "pc"
	TagNotify         = "nt"
	TagGenerate       = "gn"
)

// Condition discriminator tags.
const (
	TagAlways       = "al"
	TagFromState    = "fs"
	TagArtifactType = "at"
)

// Trigger phase tags.
const (
	PhaseSync  = "s"
	PhaseAsync = "a"
)

var errMissingTag = errors.New("wire: element has no discriminator tag")

// PropertyChange is the wire form of a property-change action.
type PropertyChange struct {
	Tag            string         `json:"t"`
	PropertyTypeID int            `json:"pid"`
	Value          *string        `json:"v,omitempty"`
	ValidValues    []ValidValueRef `json:"vv,omitempty"`
	UsersGroups    *UsersGroups   `json:"ug,omitempty"`
}

// ValidValueRef selects a choice value by id or by value text.
type ValidValueRef struct {
	ID    int    `json:"i,omitempty"`
	Value string `json:"v,omitempty"`
}

// UsersGroups is the wire form of a user-property payload.
type UsersGroups struct {
	Entries            []UserGroupRef `json:"e,omitempty"`
	IncludeCurrentUser bool           `json:"cu,omitempty"`
}

// UserGroupRef carries an id, a group/not-group flag and an optional
// scoping project id.
type UserGroupRef struct {
	ID        int    `json:"i,omitempty"`
	Name      string `json:"n,omitempty"`
	IsGroup   bool   `json:"g"`
	ProjectID *int   `json:"pi,omitempty"`
}

// Notify is the wire form of a notification action.
type Notify struct {
	Tag      string `json:"t"`
	Subject  string `json:"s,omitempty"`
	GroupIDs []int  `json:"gs,omitempty"`
}

// Generate is the wire form of a child-generation action.
type Generate struct {
	Tag          string `json:"t"`
	ArtifactType string `json:"at"`
	NamePrefix   string `json:"np,omitempty"`
}

// Action is the tagged envelope for one trigger action. Exactly one
// known payload is set, or Raw holds an unknown variant verbatim so
// stored definitions survive round-trips through older engines.
type Action struct {
	Tag            string
	PropertyChange *PropertyChange
	Notify         *Notify
	Generate       *Generate
	Raw            json.RawMessage
}

func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Tag {
	case TagPropertyChange:
		payload := *a.PropertyChange
		payload.Tag = TagPropertyChange

		return json.Marshal(payload)
	case TagNotify:
		payload := *a.Notify
		payload.Tag = TagNotify

		return json.Marshal(payload)
	case TagGenerate:
		payload := *a.Generate
		payload.Tag = TagGenerate

		return json.Marshal(payload)
	default:
		if a.Raw != nil {
			return a.Raw, nil
		}

		return nil, fmt.Errorf("wire: cannot marshal action with tag %q", a.Tag)
	}
}

func (a *Action) UnmarshalJSON(data []byte) error {
	tag, err := peekTag(data)
	if err != nil {
		return err
	}

	a.Tag = tag

	switch tag {
	case TagPropertyChange:
		a.PropertyChange = &PropertyChange{}

		return json.Unmarshal(data, a.PropertyChange)
	case TagNotify:
		a.Notify = &Notify{}

		return json.Unmarshal(data, a.Notify)
	case TagGenerate:
		a.Generate = &Generate{}

		return json.Unmarshal(data, a.Generate)
	default:
		// Unknown variant: keep the raw payload so it re-serializes
		// byte-for-byte.
		a.Raw = append(json.RawMessage(nil), data...)

		return nil
	}
}

// FromStateCond payload.
type FromStateCond struct {
	Tag   string `json:"t"`
	State string `json:"s"`
}

// ArtifactTypeCond payload.
type ArtifactTypeCond struct {
	Tag          string `json:"t"`
	ArtifactType string `json:"at"`
}

// Condition is the tagged envelope for one trigger condition.
type Condition struct {
	Tag          string
	FromState    *FromStateCond
	ArtifactType *ArtifactTypeCond
	Raw          json.RawMessage
}

func (c Condition) MarshalJSON() ([]byte, error) {
	switch c.Tag {
	case TagAlways:
		return json.Marshal(struct {
			Tag string `json:"t"`
		}{Tag: TagAlways})
	case TagFromState:
		payload := *c.FromState
		payload.Tag = TagFromState

		return json.Marshal(payload)
	case TagArtifactType:
		payload := *c.ArtifactType
		payload.Tag = TagArtifactType

		return json.Marshal(payload)
	default:
		if c.Raw != nil {
			return c.Raw, nil
		}

		return nil, fmt.Errorf("wire: cannot marshal condition with tag %q", c.Tag)
	}
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	tag, err := peekTag(data)
	if err != nil {
		return err
	}

	c.Tag = tag

	switch tag {
	case TagAlways:
		return nil
	case TagFromState:
		c.FromState = &FromStateCond{}

		return json.Unmarshal(data, c.FromState)
	case TagArtifactType:
		c.ArtifactType = &ArtifactTypeCond{}

		return json.Unmarshal(data, c.ArtifactType)
	default:
		c.Raw = append(json.RawMessage(nil), data...)

		return nil
	}
}

// Trigger is the wire form of one bound trigger.
type Trigger struct {
	Name      string     `json:"n"`
	Phase     string     `json:"ph"`
	Condition *Condition `json:"c,omitempty"`
	Action    Action     `json:"a"`
}

// Permissions is the wire form of a transition's permission set: a
// "skip" flag that opens the transition to everyone, plus group ids.
type Permissions struct {
	Skip     bool  `json:"sk"`
	GroupIDs []int `json:"g,omitempty"`
}

func peekTag(data []byte) (string, error) {
	var envelope struct {
		Tag string `json:"t"`
	}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("wire: malformed element: %w", err)
	}

	if envelope.Tag == "" {
		return "", errMissingTag
	}

	return envelope.Tag, nil
}
