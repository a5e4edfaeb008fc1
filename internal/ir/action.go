package ir

import (
	"fmt"
	"maps"
)

// TypeKey is the discriminant key of the flat action wire shape.
const TypeKey = "type"

// Action is a tagged change request: a discriminant Type plus a payload
// whose shape depends on the tag.
//
// On the wire an action is the flat record {"type": <tag>, ...payload}.
// Payload never contains TypeKey.
type Action struct {
	Type    string
	Payload IRObject
}

// NewAction builds an action from a tag and payload pairs.
//
//	NewAction("TOGGLE_TODO", O("id", IRInt(0)))
func NewAction(tag string, pairs ...IRPair) Action {
	payload := NewIRObjectFromPairs(pairs...)
	delete(payload, TypeKey)
	return Action{Type: tag, Payload: payload}
}

// ValidationError reports a malformed field with its path.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ActionFromObject splits a flat wire record into tag and payload.
// The record must carry a non-empty string "type", and the payload may not
// contain null anywhere, since canonical JSON cannot represent it.
func ActionFromObject(obj IRObject) (Action, error) {
	raw, ok := obj[TypeKey]
	if !ok {
		return Action{}, ValidationError{Field: TypeKey, Message: "action type is required"}
	}
	tag, ok := raw.(IRString)
	if !ok {
		return Action{}, ValidationError{Field: TypeKey, Message: fmt.Sprintf("action type must be a string, got %T", raw)}
	}
	if tag == "" {
		return Action{}, ValidationError{Field: TypeKey, Message: "action type must be non-empty"}
	}

	payload := make(IRObject, len(obj))
	for _, k := range obj.SortedKeys() {
		if k == TypeKey {
			continue
		}
		if path, ok := findNull(obj[k], k); ok {
			return Action{}, ValidationError{Field: path, Message: "null is not allowed"}
		}
		payload[k] = obj[k]
	}
	return Action{Type: string(tag), Payload: payload}, nil
}

// findNull returns the path of the first null inside v, visiting object
// keys in sorted order so the reported path is stable.
func findNull(v IRValue, path string) (string, bool) {
	switch val := v.(type) {
	case nil, IRNull:
		return path, true
	case IRArray:
		for i, elem := range val {
			if p, ok := findNull(elem, fmt.Sprintf("%s[%d]", path, i)); ok {
				return p, true
			}
		}
	case IRObject:
		for _, k := range val.SortedKeys() {
			if p, ok := findNull(val[k], path+"."+k); ok {
				return p, true
			}
		}
	}
	return "", false
}

// Flatten returns the flat wire record for the action.
func (a Action) Flatten() IRObject {
	obj := make(IRObject, len(a.Payload)+1)
	maps.Copy(obj, a.Payload)
	obj[TypeKey] = IRString(a.Type)
	return obj
}

// MarshalJSON emits the flat wire shape with sorted keys.
func (a Action) MarshalJSON() ([]byte, error) {
	return a.Flatten().MarshalJSON()
}

// UnmarshalJSON decodes the flat wire shape.
func (a *Action) UnmarshalJSON(data []byte) error {
	var obj IRObject
	if err := obj.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decode action: %w", err)
	}
	decoded, err := ActionFromObject(obj)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// String renders the action for log lines.
func (a Action) String() string {
	return a.Type
}

// Int reads an integer payload field.
func (a Action) Int(key string) (int64, error) {
	return a.Payload.Int(key)
}

// Object reads a nested record payload field.
func (a Action) Object(key string) (IRObject, error) {
	return a.Payload.Object(key)
}

// Int reads an integer field.
func (obj IRObject) Int(key string) (int64, error) {
	v, err := lookup[IRInt](obj, key, "an integer")
	return int64(v), err
}

// String reads a string field.
func (obj IRObject) String(key string) (string, error) {
	v, err := lookup[IRString](obj, key, "a string")
	return string(v), err
}

// Bool reads a boolean field.
func (obj IRObject) Bool(key string) (bool, error) {
	v, err := lookup[IRBool](obj, key, "a boolean")
	return bool(v), err
}

// Object reads a nested record field.
func (obj IRObject) Object(key string) (IRObject, error) {
	return lookup[IRObject](obj, key, "an object")
}

func lookup[T IRValue](obj IRObject, key, want string) (T, error) {
	var zero T
	raw, ok := obj[key]
	if !ok {
		return zero, ValidationError{Field: key, Message: "is required"}
	}
	v, ok := raw.(T)
	if !ok {
		return zero, ValidationError{Field: key, Message: fmt.Sprintf("must be %s, got %T", want, raw)}
	}
	return v, nil
}
