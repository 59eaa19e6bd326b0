// Package main hosts the bideorai CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration and external tools, then
// hands a single packaging request to the pipeline. Planned and executed
// tool commands are echoed on stdout; logs and errors go to stderr.
package main
