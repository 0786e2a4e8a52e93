// Package orchestrator wires stored form and screen definitions to the form
// engine, the renderer registry and the screen renderer. It is the single
// entry point used by the CLI and the preview server: every dependency is
// passed in explicitly, nothing is read from package globals.
package orchestrator
