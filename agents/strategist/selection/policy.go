// Package selection picks one featured video per candidate source.
package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"video-strategist/internal/models"
	"video-strategist/shared/ai"
)

type Input struct {
	Prompt   string
	Trending models.CandidateSet
	Search   models.CandidateSet
}

// Policy asks the generator for the best candidate of each source and repairs
// any answer that does not name a valid, distinct candidate.
type Policy struct {
	generator   ai.Generator
	temperature float32
}

func New(g ai.Generator, temperature float32) *Policy {
	return &Policy{generator: g, temperature: temperature}
}

type choice struct {
	VideoID       string `json:"video_id"`
	Justification string `json:"justification"`
}

type answer struct {
	BestTrending *choice `json:"best_trending"`
	BestSearch   *choice `json:"best_search"`
	Rationale    string  `json:"rationale"`
}

// Select always returns a result. Every candidate of both inputs ends up either
// featured or in Remaining, exactly once.
func (p *Policy) Select(ctx context.Context, in Input) models.SelectionResult {
	var ans answer
	if len(in.Trending.Videos)+len(in.Search.Videos) > 0 {
		var err error
		ans, err = p.ask(ctx, in)
		if err != nil {
			slog.Warn("selection answer unusable, using first candidates", "error", err)
		}
	}

	result := models.SelectionResult{Rationale: ans.Rationale}
	result.BestTrending = pick(in.Trending, ans.BestTrending, "")

	exclude := ""
	if result.BestTrending != nil {
		exclude = result.BestTrending.ID
	}
	result.BestSearch = pick(in.Search, ans.BestSearch, exclude)

	featured := map[string]bool{}
	for _, id := range result.FeaturedIDs() {
		featured[id] = true
	}
	result.Remaining = []models.CandidateSummary{}
	for _, set := range []models.CandidateSet{in.Trending, in.Search} {
		for _, v := range set.Videos {
			if featured[v.ID] {
				continue
			}
			featured[v.ID] = true
			result.Remaining = append(result.Remaining, models.Summarize(v, set.Source))
		}
	}

	if result.Rationale == "" {
		result.Rationale = "Featured the first candidate of each source."
	}
	return result
}

// pick resolves the generator's choice against set. Invalid or excluded ids fall
// back to the first candidate that is not excluded.
func pick(set models.CandidateSet, c *choice, exclude string) *models.Pick {
	if c != nil && c.VideoID != exclude {
		if v, ok := set.Find(c.VideoID); ok {
			return &models.Pick{CandidateSummary: models.Summarize(v, set.Source), Justification: c.Justification}
		}
	}
	for _, v := range set.Videos {
		if v.ID == exclude {
			continue
		}
		return &models.Pick{
			CandidateSummary: models.Summarize(v, set.Source),
			Justification:    fmt.Sprintf("Top %s result by view count.", set.Source),
		}
	}
	return nil
}

func (p *Policy) ask(ctx context.Context, in Input) (answer, error) {
	text, err := p.generator.Generate(ctx, ai.Prompt{
		System:      "You are a video marketing strategist who selects reference content for a campaign.",
		User:        buildPrompt(in),
		Temperature: p.temperature,
	})
	if err != nil {
		return answer{}, err
	}

	body := ai.StripCodeFence(text)
	start, end := strings.Index(body, "{"), strings.LastIndex(body, "}")
	if start == -1 || end < start {
		return answer{}, fmt.Errorf("no JSON object in selection answer")
	}

	var ans answer
	if err := json.Unmarshal([]byte(body[start:end+1]), &ans); err != nil {
		return answer{}, fmt.Errorf("decode selection answer: %w", err)
	}
	return ans, nil
}

func buildPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Campaign request: %s\n\n", in.Prompt)
	writeSet(&b, "TRENDING CANDIDATES (recent, broad reach)", in.Trending)
	writeSet(&b, "SEARCH CANDIDATES (longer window, niche)", in.Search)
	b.WriteString(`Choose the single best trending candidate for reach and relevance to the request,
and the single best search candidate for niche insight. The two must be different videos.
Use only video_id values listed above.

Respond with JSON only:
{
  "best_trending": {"video_id": "...", "justification": "..."},
  "best_search": {"video_id": "...", "justification": "..."},
  "rationale": "one paragraph comparing the two picks"
}`)
	return b.String()
}

func writeSet(b *strings.Builder, heading string, set models.CandidateSet) {
	fmt.Fprintf(b, "%s:\n", heading)
	if len(set.Videos) == 0 {
		b.WriteString("- none\n\n")
		return
	}
	for _, v := range set.Videos {
		fmt.Fprintf(b, "- video_id: %s | title: %s | channel: %s | %ds", v.ID, v.Title, v.ChannelTitle, v.DurationSeconds)
		if v.AgeDays != nil {
			fmt.Fprintf(b, " | %d days old", *v.AgeDays)
		}
		if len(v.Tags) > 0 {
			fmt.Fprintf(b, " | tags: %s", strings.Join(v.Tags, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
