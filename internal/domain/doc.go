// Package domain provides the todo and goal example domains: entity
// records, their action constructors, the per-domain list reducers and the
// combined root reducer.
//
// Each domain is a Kind. A Kind decodes an action into a closed op set
// (add, toggle, remove); any tag it does not own maps to no op and the
// reducer returns its input list unchanged. Lists are never mutated:
// every op builds a new list, and entries that did not change keep their
// pointers.
package domain
