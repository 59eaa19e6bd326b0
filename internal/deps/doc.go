// Package deps locates the external binaries bideorai shells out to.
//
// CheckBinaries reports availability for status output. ResolveTools turns the
// configured tool set into absolute paths once at startup, failing with a
// services.ToolUnavailableError that lists every missing tool.
package deps
