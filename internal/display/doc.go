// Package display prints the controller state to a console.
package display
