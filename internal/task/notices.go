package task

// User-visible notices. They stay short and non-technical; details go to the log.
const (
	NoticeGreeting       = "Hi! Send me a track name or YouTube link and I'll find and send it to you 🎶"
	NoticeHelp           = "Send a track name, a YouTube link or a YouTube playlist link. Requests are handled one at a time, in the order you send them."
	NoticeUnknownCommand = "Unknown command. Just send me a track name or a link."
	NoticePleaseWait     = "⏳ Please wait for the current track to finish."
	NoticeNextTrack      = "▶️ Now searching for the next track..."
	NoticeSearching      = "🔎 Searching and downloading the track..."
	NoticeNoResults      = "No results found 😢"
	NoticeEmptyPlaylist  = "Nothing found in this playlist 😢"
	NoticeFailed         = "⚠️ Failed to process this track."
	NoticeUnavailable    = "⚠️ The bot is shutting down, please try again later."
)
