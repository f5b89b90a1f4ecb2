package models

// LegalSection is one legal document shown in the apps' settings screens.
type LegalSection struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Audience string `json:"audience"` // "user", "provider" or "both"
	Version  string `json:"version"`  // e.g., "v1.0"
	Updated  string `json:"updated"`  // ISO8601 timestamp
}

const (
	AudienceUser     = "user"
	AudienceProvider = "provider"
	AudienceBoth     = "both"
)
