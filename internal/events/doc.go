// Package events provides types and interfaces for observing the lifecycle
// of queued work.
//
// The task runner emits an Event whenever an item is queued, delivered,
// finds no results or fails, and whenever the reaper reclaims an idle
// session. Handlers registered on an EventEmitter observe these events
// without the task package knowing who listens.
//
// The primary components are:
// - Event: a single lifecycle notification
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
// - Bus: an EventEmitter that fans events out to subscribed handlers
// - Counter: a handler that keeps running totals per event type
package events
