// Package errors provides structured error types for the ownership library.
//
// Errors are categorized by Phase (which handle operation was running) and
// Kind (error category). The Error type carries the handle kind, the address
// of the resource involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAcquire, errors.KindAllocation).
//		Handle("shared").
//		Addr(addr).
//		Cause(budget.ErrLimitExceeded).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.AllocationFailed(errors.PhaseAcquire, addr, cause)
//	err := errors.SelfMove("unique")
//
// Resource exhaustion is returned to the caller. Contract violations are
// raised with panic and are not meant to be recovered.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
