// Package logger wraps zap with a process-wide sugared logger and helpers
// that pull a scoped logger out of a context.
//
// Pipelines attach a name and a run id once (WithName, WithKV) and every
// stage below logs through the context it was handed, so per-branch and
// per-device messages carry the same structured fields.
package logger
