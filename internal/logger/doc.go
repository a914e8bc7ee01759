// Package logger wraps zap with a global sugared logger and context helpers.
//
// Services take a context and pull the logger out of it (FromContext), so a
// component name or key-value pairs attached once with WithName or WithKV show
// up on every line that component writes.
package logger
