package domain

import (
	"fmt"

	"github.com/roach88/reducto/internal/ir"
)

// Entity is one todo or goal record. IDs are caller-assigned and assumed
// unique within their list.
type Entity struct {
	ID        int64  `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// ToIR converts the entity to its payload record.
func (e Entity) ToIR() ir.IRObject {
	return ir.IRObject{
		"id":        ir.IRInt(e.ID),
		"text":      ir.IRString(e.Text),
		"completed": ir.IRBool(e.Completed),
	}
}

// EntityFromIR decodes a payload record. id and text are required;
// completed defaults to false.
func EntityFromIR(obj ir.IRObject) (Entity, error) {
	id, err := obj.Int("id")
	if err != nil {
		return Entity{}, err
	}
	text, err := obj.String("text")
	if err != nil {
		return Entity{}, err
	}

	var completed bool
	if _, ok := obj["completed"]; ok {
		completed, err = obj.Bool("completed")
		if err != nil {
			return Entity{}, err
		}
	}

	return Entity{ID: id, Text: text, Completed: completed}, nil
}

// List is an immutable sequence of entities. Entries are pointers so that
// an unchanged entry stays reference-identical across transitions.
type List []*Entity

// Same reports whether l and other are the same list value: same length
// and same backing array. Two empty lists are the same.
func (l List) Same(other List) bool {
	if len(l) != len(other) {
		return false
	}
	if len(l) == 0 {
		return true
	}
	return &l[0] == &other[0]
}

// Values returns the entities by value, for comparisons and output.
func (l List) Values() []Entity {
	out := make([]Entity, len(l))
	for i, e := range l {
		out[i] = *e
	}
	return out
}

// Find returns the entry with the given id.
func (l List) Find(id int64) (*Entity, bool) {
	for _, e := range l {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// ToIR converts the list to an IR array.
func (l List) ToIR() ir.IRArray {
	arr := make(ir.IRArray, len(l))
	for i, e := range l {
		arr[i] = e.ToIR()
	}
	return arr
}

// ListFromIR decodes an IR array of entity records.
func ListFromIR(arr ir.IRArray) (List, error) {
	out := make(List, 0, len(arr))
	for i, v := range arr {
		obj, ok := v.(ir.IRObject)
		if !ok {
			return nil, fmt.Errorf("[%d]: expected object, got %T", i, v)
		}
		e, err := EntityFromIR(obj)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, &e)
	}
	return out, nil
}
