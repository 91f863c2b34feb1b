/*
Package x contains interfaces and helpers shared between the
extensions that implement the custody logic. Nothing in this package
is required by the framework core, but it standardizes how extensions
authenticate signers and validate data.
*/
package x

// Validater is implemented by anything that can check its own state
// for consistency. Kept distinct from the stdlib naming to avoid
// confusion with request validation.
type Validater interface {
	Validate() error
}
