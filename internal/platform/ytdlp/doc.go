// Package ytdlp implements track search, playlist expansion and audio fetching
// on top of the yt-dlp executable.
//
// Every call stages the configured cookie material to a private temporary
// file, passes it to yt-dlp and removes it again regardless of the outcome.
// Fetched audio is cached inside the caller's directory under a name derived
// from a hash of the source URL, next to a small JSON sidecar holding the
// resolved title, so repeated fetches of the same URL skip the network.
package ytdlp
