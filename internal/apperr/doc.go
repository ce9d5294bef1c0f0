// Package apperr defines the typed failures raised by the vault's core
// operations.
//
// Every failure carries a Kind. HTTP handlers translate the Kind into a
// status code and render {"name": Kind, "message": Message}. Code that
// only needs to branch on the kind compares against the sentinel values:
//
//	if errors.Is(err, apperr.ErrNotFound) { ... }
package apperr
