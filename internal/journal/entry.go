package journal

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/reducto/internal/ir"
)

// Entry is one journaled dispatch.
//
// ActionHash is computed by WriteEntry from Action; any value set by the
// caller is ignored. It is empty for rows written before schema v2.
type Entry struct {
	Session    string    `json:"session"`
	Seq        int64     `json:"seq"`
	Action     ir.Action `json:"action"`
	ActionHash string    `json:"action_hash,omitempty"`
	StateHash  string    `json:"state_hash"`
}

// marshalAction converts an action to canonical JSON TEXT for storage.
func marshalAction(a ir.Action) (string, error) {
	data, err := ir.MarshalCanonical(a.Flatten())
	if err != nil {
		return "", fmt.Errorf("marshal action: %w", err)
	}
	return string(data), nil
}

// unmarshalAction parses stored JSON TEXT back into an action.
// Integers decode through json.Number, so values above 2^53 survive.
func unmarshalAction(data string) (ir.Action, error) {
	var a ir.Action
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return ir.Action{}, fmt.Errorf("unmarshal action: %w", err)
	}
	return a, nil
}
