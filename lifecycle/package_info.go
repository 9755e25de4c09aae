// Package lifecycle is the engine that drives one resource through create, list, read,
// update, delete, and a final read that must find nothing.
//
// A run is an explicit state machine:
//
//	Start → Created → Listed → FetchedByID → Updated → VerifiedUpdate → Deleted → VerifiedAbsent → Done
//
// Each transition makes one request through a harness.Executor and then applies checks from
// the assertions package to the response. The first failed check stops the run in the state it
// had reached, and the Outcome reports that state along with the error. Values produced by one
// step, such as the identifier assigned at creation, are carried to later steps in a
// RunContext that belongs to that run alone.
//
// A run never retries and never cleans up after a failure: if it stops before the delete step,
// the resource it created is left behind.
package lifecycle
