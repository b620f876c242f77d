// Package licensebanner provides the command-line interface for the
// licensebanner tool. It configures subcommands (scan, banner, report,
// config), layers option files and flags, and drives the license engine over
// an already built project.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/redactyl/licensebanner/cmd/licensebanner"
//	func main() { licensebanner.Execute() }
package licensebanner
