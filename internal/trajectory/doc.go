// Package trajectory defines the recorded data model and its persisted form.
//
// A Track is one entity's complete timestamped history for one kind of
// measurement (position, position+forward direction, or a scalar series).
// A Store aggregates all tracks of one recording session and is the unit
// of persistence.
//
// Ownership is strictly single-writer: a Store is mutated only by the
// recorder while a recording session is active, and is read-only once
// encoded or once loaded for replay. Multiple readers of a loaded Store
// are safe; concurrent writers are not supported.
//
// The persisted form is a JSON document with three top-level lists
// (objects, cameras, charts). Decode validates incoming documents against
// an embedded CUE schema and rejects samples that are not in strictly
// increasing timestamp order; malformed input is never resorted.
package trajectory
