package tui

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyCtrlC     = "ctrl+c"
	KeyRecord    = "r"
	KeyStop      = "s"
	KeyYouTube   = "y"
	KeyAsk       = "a"
	KeyMic       = "m"
	KeyCancel    = "c"
	KeyEnter     = "enter"
	KeyEscape    = "esc"
	KeyToggleRec = " "
)
