// Package status implements the ghc-status client: it asks a running
// controller for its state and prints it, either as the console display or
// as raw JSON, once or repeatedly.
package status
