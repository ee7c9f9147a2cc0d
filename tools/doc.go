// Package tools defines the contract between tool implementations and the
// protocol layer that exposes them.
//
// A Tool has a function name, a description, a JSON schema for its arguments
// and a Run method that always produces a Result. Func derives the schema from
// a Go struct by reflection and validates incoming arguments against it before
// the handler sees them. A Toolbox indexes tools by name and dispatches calls
// to them.
package tools
