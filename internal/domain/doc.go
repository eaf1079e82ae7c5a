// Package domain contains the core entities and value objects of the bot:
// user identities, tracks, work items and the reply targets used to answer
// the requester. It is independent of any specific chat transport or
// download backend.
package domain
