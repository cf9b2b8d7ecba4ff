// Package domain defines the types and consumer-side interfaces shared by
// the reception engine, its adapters and its callers.
//
// Files are concept-oriented (verdict.go, reception.go, film.go, errors.go).
// No implementation code beyond small value helpers.
package domain
