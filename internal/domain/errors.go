package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidUserID is returned when a user identity is not a positive number.
	ErrInvalidUserID = errors.New("invalid user ID")

	// ErrEmptyPayload is returned when a work item carries no query or URL.
	ErrEmptyPayload = errors.New("payload cannot be empty")

	// ErrNilReplyTarget is returned when a work item has nowhere to reply to.
	ErrNilReplyTarget = errors.New("reply target cannot be nil")

	// ErrNoResults is returned when a search or playlist expansion yields nothing.
	ErrNoResults = errors.New("no results found")

	// ErrFetchFailed is returned when a track cannot be resolved or downloaded.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrConfigurationMissing is returned when credential material required
	// by a search or fetch call is absent.
	ErrConfigurationMissing = errors.New("required configuration missing")

	// ErrNotifyFailed is returned when a message cannot be delivered to the requester.
	ErrNotifyFailed = errors.New("notification failed")
)
