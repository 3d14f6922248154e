// Package main hosts the splice CLI entrypoint and command graph.
//
// The Cobra-based command tree inspects, transforms, and validates cut set
// files and drives the SQLite cut registry. It centralizes configuration
// resolution and logger setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
