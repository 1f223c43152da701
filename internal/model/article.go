package model

// Article is the canonical article shape served to callers and embedded in
// digest emails. Headline, URL and Datetime are always present after
// formatting; RelatedSymbol is set only on symbol-scoped fetches.
type Article struct {
	ID            string `json:"id"`
	Headline      string `json:"headline"`
	Summary       string `json:"summary"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	Datetime      int64  `json:"datetime"`
	RelatedSymbol string `json:"relatedSymbol,omitempty"`
	SourceRank    int    `json:"sourceRank"`
}

// Candidate is a search/rank result for one instrument. IsInWatchlist is
// always false at construction time; enrichment happens upstream of this core.
type Candidate struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Exchange      string `json:"exchange"`
	Type          string `json:"type"`
	IsInWatchlist bool   `json:"isInWatchlist"`
}
