// Package notifications pushes run lifecycle events over ntfy.
//
// When no topic is configured the constructor returns a no-op service, so
// callers notify unconditionally and never branch on configuration.
package notifications
