// Package command runs the external tools a packaging run depends on.
//
// Every invocation is described by a Command value so it can be echoed,
// recorded by tests, or printed without execution in dry-run mode. ExecRunner
// executes through os/exec and converts non-zero exits into
// services.StageError values carrying the captured tool output. DryRunRunner
// only prints.
package command
