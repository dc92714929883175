// Package errors provides structured error types for the native module system.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the module and symbol names involved plus
// a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalid).
//		Module("layer0").
//		Detail("export count disagrees with header").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TooMany(errors.PhaseBuild, "exports", 1024)
//	err := errors.SymbolNotFound("layer0", "vm_main")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
