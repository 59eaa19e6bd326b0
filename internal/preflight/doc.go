// Package preflight verifies the host can run a packaging job before any
// stage starts: directory permissions and external tool availability.
package preflight
