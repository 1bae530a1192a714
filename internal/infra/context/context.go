// Package context holds the typed context keys shared by transports and loggers.
package context

type contextKey string
