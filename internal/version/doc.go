// Package version exposes build metadata for ghc-controller and ghc-status.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
package version
