// Package fuzztests houses fuzz harnesses for the inputs keel reads from
// users: type expressions and program manifests. They guard against panics
// and non-terminating parses on arbitrary bytes.
package fuzztests
