package model

// Search outcomes reported to the UI and the JSON API.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
)

// UnknownChapter labels text that precedes the first chapter marker.
const UnknownChapter = "Unknown Chapter"

// Match is one passage of the corpus around a single occurrence of a concept.
type Match struct {
	Offset  int    `json:"offset"`
	Chapter string `json:"chapter"`
	Term    string `json:"term"`
	Text    string `json:"text"`
}

// ChapterHits groups the matches found inside one chapter.
type ChapterHits struct {
	Chapter string  `json:"chapter"`
	Matches []Match `json:"matches"`
}

type SearchRequest struct {
	Concept string `json:"concept"`
}

type SearchResult struct {
	Concept  string        `json:"concept"`
	Outcome  string        `json:"outcome"`
	Count    int           `json:"count"`
	Matches  []Match       `json:"matches"`
	Chapters []ChapterHits `json:"chapters"`
}

type NotesRequest struct {
	Concept string `json:"concept"`
	APIKey  string `json:"api_key,omitempty"`
}

// SynthesisResult is the generated note for one concept. It lives only as
// long as the request that produced it.
type SynthesisResult struct {
	ID       string  `json:"id"`
	Concept  string  `json:"concept"`
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	Notes    string  `json:"notes"`
	Matches  []Match `json:"matches"`
}
