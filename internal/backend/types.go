package backend

// TranscribeResponse is the body returned by /transcribe.
type TranscribeResponse struct {
	Success    bool   `json:"success"`
	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`
	Error      string `json:"error,omitempty"`
}

// YouTubeRequest is the body sent to /process-youtube.
type YouTubeRequest struct {
	URL string `json:"url"`
}

// YouTubeResponse is the body returned by /process-youtube.
type YouTubeResponse struct {
	Success    bool     `json:"success"`
	Title      string   `json:"title"`
	Language   string   `json:"language"`
	Source     string   `json:"source"`
	Transcript string   `json:"transcript"`
	Summary    string   `json:"summary"`
	KeyPoints  []string `json:"key_points"`
	Error      string   `json:"error,omitempty"`
}

// AskRequest is the body sent to /ask.
type AskRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// AskResponse is the body returned by /ask.
type AskResponse struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer"`
	Error   string `json:"error,omitempty"`
}
