// Package constants centralizes defaults shared across the CLI.
//
// File permissions, cell limits, pacing intervals and date layouts live here so
// cmd/, the checkers and the result sink agree on them without import cycles.
package constants
