// Package cli wires together the Cobra command tree for the sitewatch binary.
//
// It defines the root command and all subcommands (baseline, compare,
// analyze, list, models, tiles, config, cache, version), binds flags, reads
// configuration, invokes the comparison engine, and returns deterministic
// exit codes for scripting and CI.
package cli
