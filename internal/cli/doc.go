// Package cli defines the Cobra command tree for the copybridge binary. Each
// file registers one top-level command with the root command. Commands handle
// flags and output only; copying lives in internal/copier and request
// dispatch in internal/bridge.
package cli
