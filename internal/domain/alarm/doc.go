// Package alarm tracks the active alarm conditions of the greenhouse.
//
// A Registry holds at most one Record per Condition. Evaluate sweeps all six
// threshold conditions against a reading and sets or clears each one, so after
// a sweep the registry holds exactly the conditions currently breached. A
// condition that stays breached keeps the time and value of its first trigger.
//
// Registry is not safe for concurrent use; callers that share it between
// goroutines guard every call with one mutex.
package alarm
