// Package capability defines what a delegated session key may be allowed
// to do: the capability data model, its validation rules, the kind
// inference applied to proposed operations, and a typed call-data
// encoder so that selectors are handled as values instead of string
// slices.
//
// Everything in this package is pure. Nothing here reads the clock,
// touches storage, or logs.
package capability
