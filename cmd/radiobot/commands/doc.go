// Package commands implements the radiobot CLI, which runs the chat plugin commands from a terminal
// against the same libraries and config files the plugins use.
package commands
