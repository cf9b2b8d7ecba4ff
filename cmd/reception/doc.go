// Command reception runs the review sentiment engine in batch: over a JSON
// film catalog, over a single list of reviews, or over films stored in
// Postgres that have not been analyzed yet.
package main
