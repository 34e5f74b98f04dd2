// Package dataset provides the in-memory table model the pipeline operates
// on, together with loading of tabular sources.
//
// # Data Model
//
// A Table is an ordered list of homogeneous-width rows under a fixed column
// set. Every cell is a Value, a small tagged union over the shapes a raw
// financial-transaction cell can take:
//
//	missing  - the cell was empty in the source or a conversion failed
//	string   - raw text, the form every cell starts in
//	number   - a float64, produced by the tolerant numeric conversions
//	instant  - a point in time, produced by timestamp validation
//
// Rows are conceptually immutable: cleaning stages build new tables (or
// rewrite a private working copy) rather than mutating rows that other
// components may still observe.
//
// # Loading
//
// Load reads a CSV or XLSX source into a Table. Every cell is loaded as
// string or missing; typed conversion is the cleaning stages' job, so a
// malformed cell can degrade to missing instead of failing the load. A
// nonexistent source yields a NOT_FOUND error, any other read problem a
// STRUCTURAL one; both are fatal to a run.
//
// # Schema
//
// The column set of a transaction table is known a priori. schema.go holds
// the column names, the categorical domains, the documented numeric ranges
// and the missing-value sentinels that appear in raw exports.
package dataset
