// Package capture provides in-memory implementations of the chat services injected in plugins.
// They record every call so tests can assert what a plugin sent, deleted or reacted with
package capture
