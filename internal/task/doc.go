// Package task manages per-user work queues, their workers and the idle
// session reaper.
//
// Every user owns one FIFO queue and at most one worker goroutine at a time.
// The Controller accepts inbound requests and starts a worker when none is
// running; the Worker drains the queue item by item and exits when it finds
// the queue empty; the Reaper periodically drops sessions, and their sandbox
// directories, once the user has been inactive for longer than the idle
// timeout. The Runner owns all of them and their lifecycle.
package task
