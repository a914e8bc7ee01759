// Package alarmcache mirrors the active alarm list into Redis so dashboards
// and other services can read it without talking to the controller.
package alarmcache
