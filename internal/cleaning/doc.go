// Package cleaning implements the ordered repair stages that turn a raw
// transaction table into a trustworthy one.
//
// # Stage Order
//
// Stages run strictly in sequence; each one receives the table the previous
// stage produced and there is no rollback once a stage commits:
//
//  1. Address validation: rows survive only when both sending_address and
//     receiving_address are 42-character 0x-prefixed strings.
//  2. IP normalization: placeholder ip_prefix values are rewritten in place
//     to the INVALID_IP sentinel. No rows are dropped.
//  3. risk_score imputation: missing scores take their region's median,
//     then a global-median pass covers rows no region could serve.
//  4. amount imputation: the same two-pass procedure applied to amount.
//  5. Timestamp validation: epoch-second cells become instants; failures
//     degrade to missing, and future or pre-2000 instants are counted
//     informationally.
//  6. Region normalization: regions are lowercased, then rows with a
//     placeholder region are dropped.
//  7. Duplicate removal: exact duplicates of an earlier surviving row are
//     dropped, keeping the first occurrence.
//
// # Error Policy
//
// A malformed cell never aborts a run. Failed conversions degrade to
// missing values and flow through the same imputation or drop rule as true
// nulls. A stage whose columns are absent from the table skips itself and
// reports that, leaving the table untouched.
//
// # Ownership
//
// Pipeline.Run clones the input table once and hands the clone down the
// stage chain; stages are free to mutate or replace their input. The
// caller's table is never modified.
package cleaning
