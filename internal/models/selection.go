package models

// CandidateSummary is the reduced form of a candidate forwarded past selection.
type CandidateSummary struct {
	ID          string `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Pick is a featured candidate and why it was chosen.
type Pick struct {
	CandidateSummary
	Justification string `json:"justification"`
}

// SelectionResult holds one featured candidate per source plus everything else.
type SelectionResult struct {
	BestTrending *Pick              `json:"best_trending,omitempty"`
	BestSearch   *Pick              `json:"best_search,omitempty"`
	Remaining    []CandidateSummary `json:"remaining"`
	Rationale    string             `json:"rationale,omitempty"`
}

// FeaturedIDs returns the ids of the picks, trending first.
func (s SelectionResult) FeaturedIDs() []string {
	var ids []string
	if s.BestTrending != nil {
		ids = append(ids, s.BestTrending.ID)
	}
	if s.BestSearch != nil {
		ids = append(ids, s.BestSearch.ID)
	}
	return ids
}

// RemainingIDs returns the ids of the non-featured candidates in order.
func (s SelectionResult) RemainingIDs() []string {
	ids := make([]string, 0, len(s.Remaining))
	for _, r := range s.Remaining {
		ids = append(ids, r.ID)
	}
	return ids
}

// Summarize reduces a candidate to id, title and description.
func Summarize(v VideoCandidate, source string) CandidateSummary {
	return CandidateSummary{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Source:      source,
	}
}
