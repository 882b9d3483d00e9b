// Package core splits uploaded contact sheets across a roster of agents.
//
// This package holds the domain logic independent of HTTP, storage or CLI
// concerns. Web handlers and the offline CLI both drive it through the
// same entry points.
//
// # Pipeline
//
// One upload moves through a strict sequence:
//
//  1. [ParseTable] decodes CSV or XLSX bytes into header-keyed [RawRow]s.
//  2. [CheckHeaders] requires FirstName, Phone and Notes in the header.
//  3. [ValidateRows] turns rows into [ContactRecord]s or [RowRejection]s.
//  4. A [RosterSelector] supplies the ordered agents for the run.
//  5. [PlanDistribution] slices the accepted records across exactly
//     [RequiredTargets] agents.
//  6. A [DistributionRecorder] persists the plan and returns its ID.
//
// [Prepare] runs steps 1-3 and [Distributor.Distribute] runs all six.
//
// # Fair remainder split
//
// With n accepted records and five agents, every agent receives n/5
// records and the first n%5 agents (in roster order) receive one more.
// Slices are contiguous, so 23 records split as 5,5,5,4,4 and reading the
// allocations back in order reproduces the accepted sequence.
//
// # Errors
//
// Fatal failures are typed ([FormatError], [MissingHeadersError],
// [EmptyInputError], [NoAcceptedRecordsError], [TargetCountError]) and
// expose their [ErrorKind] through [KindOf]. Rows that fail validation are
// not errors: they are reported as rejections and the batch continues.
// [MapError] converts any error into a coded [UserMessage].
package core
