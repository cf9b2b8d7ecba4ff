// Package app provides the application service layer.
//
// Orchestrates use cases: ad-hoc review batches, stored films, pending-film
// sweeps and catalog files. Depends on domain interfaces, not concrete
// implementations.
package app
