// Package notifications delivers sync outcome notices over ntfy.
//
// The service posts plain-text messages with ntfy title, tag, and priority
// headers. When no topic is configured the returned implementation is a noop,
// so callers never guard notification calls.
package notifications
