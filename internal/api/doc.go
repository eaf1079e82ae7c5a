// Package api serves the read-only admin HTTP surface: a health check, a view
// of the live per-user sessions and lifecycle event totals. It holds no
// state of its own and never mutates the task runner.
package api
