// Package errors provides structured, coded errors for lumen.
//
// Failures in the reactive core fall into three groups:
//   - fatal: a poisoned lock or a task spawned before the runner exists.
//     These panic with an *Error so the frame driver (or process) dies loudly.
//   - data: an async computation that fails ends in an AsyncState error,
//     never a panic.
//   - no-op: mutating a read-only derived signal silently does nothing.
//
// # Error Codes
//
// Each error carries a code (e.g. "E101") mapped in the registry to a
// category, a short message and a longer detail:
//
//	err := errors.New("E101").WithOp("signal.State.Mutate")
//	fmt.Println(err.Format())
//	// ERROR E101: Lock poisoned
//	//
//	//   signal.State.Mutate
//	//   ...
package errors
