// Package classifier provides domain.Classifier implementations: an HTTP
// client for a hosted text-classification model, an offline VADER
// classifier and a caching decorator.
package classifier
