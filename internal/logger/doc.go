// Package logger wraps zap for the installer:
//   - a global sugared logger with a console encoder writing to stdout,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and configuration,
//   - leveled helpers (Infof, WarnKV, ErrorKV, ...).
//
// Every installation step receives a context and logs through it, so the
// step name travels with each message.
package logger
