// Package ir provides the wire representation shared by every reducto
// package: actions, payload values, canonical JSON and content hashes.
//
// ir imports nothing internal. All other internal packages import ir, which
// keeps it the foundational layer.
//
// Key constraints:
//   - No float types. Numbers are int64.
//   - An action on the wire is the flat record {"type": <tag>, ...payload}.
//   - Object keys are ordered by UTF-16 code units (RFC 8785) wherever
//     ordering is observable.
package ir
