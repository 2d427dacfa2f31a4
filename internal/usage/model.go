package usage

import "time"

// Download is one completed export attributed to the document owner.
type Download struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ResumeID  string    `json:"resumeId"`
	Format    string    `json:"format"`
	Shared    bool      `json:"shared"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary aggregates an owner's downloads.
type Summary struct {
	Total    int            `json:"total"`
	ByFormat map[string]int `json:"byFormat"`
	Shared   int            `json:"shared"`
}
