// Package redis provides the Redis client with metrics and circuit breaker
// hooks, and the shared verdict cache.
package redis
