// Package common holds helpers shared by several services.
//
// It provides a gRPC client for the status API with per-call timeouts and a
// helper that identifies the calling host and user so the controller can log
// who asked for its state.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
