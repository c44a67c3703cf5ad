package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Count is a non-negative integer report field. Generated JSON sometimes quotes
// numbers or emits fractions, so decoding accepts both, rounds, and clamps to
// [0, MaxInt64]; encoding is always an integer.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if s == "" {
			*c = 0
			return nil
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("count %s is not a number", data)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("count %s is not finite", data)
	}
	switch f = math.Round(f); {
	case f <= 0:
		*c = 0
	case f >= math.MaxInt64:
		*c = math.MaxInt64
	default:
		*c = Count(f)
	}
	return nil
}

func (c Count) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(c), 10)), nil
}

// KeywordCount is encoded as a two-element array: ["keyword", count].
type KeywordCount struct {
	Keyword string
	Count   Count
}

func (k *KeywordCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("keyword pair has %d elements, want 2", len(pair))
		}
		if err := json.Unmarshal(pair[0], &k.Keyword); err != nil {
			return fmt.Errorf("keyword: %w", err)
		}
		return k.Count.UnmarshalJSON(pair[1])
	}

	var obj struct {
		Keyword string `json:"keyword"`
		Count   Count  `json:"count"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("keyword entry must be [keyword, count]: %w", err)
	}
	k.Keyword, k.Count = obj.Keyword, obj.Count
	return nil
}

func (k KeywordCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{k.Keyword, k.Count})
}

// ReportDocument is the top-level object the synthesis stage emits.
type ReportDocument struct {
	MarketingStrategy *StrategyReport `json:"marketing_strategy"`
}

type StrategyReport struct {
	TargetAudience         string                 `json:"target_audience"`
	OverallGoal            string                 `json:"overall_goal"`
	ContentRecommendations ContentRecommendations `json:"content_recommendations"`
	MarketingTactics       MarketingTactics       `json:"marketing_tactics"`
	SuccessMetrics         SuccessMetrics         `json:"success_metrics"`
	TrendAnalysis          TrendAnalysis          `json:"trend_analysis"`
	Videos                 VideoOrganization      `json:"videos"`
}

type ContentRecommendations struct {
	ContentTypes          []string `json:"content_types"`
	VisualStyle           string   `json:"visual_style"`
	AudioMusic            string   `json:"audio_music"`
	StorytellingApproach  string   `json:"storytelling_approach"`
	EditingStyleAndPacing string   `json:"editing_style_and_pacing"`
}

type MarketingTactics struct {
	RecommendedTagsAndKeywords      []KeywordCount `json:"recommended_tags_and_keywords"`
	TitleAndDescriptionOptimization string         `json:"title_and_description_optimization"`
	ThumbnailDesignRecommendations  string         `json:"thumbnail_design_recommendations"`
	BestPostingTimesAndFrequency    string         `json:"best_posting_times_and_frequency"`
	AudienceEngagementStrategies    string         `json:"audience_engagement_strategies"`
}

type SuccessMetrics struct {
	HowToMeasureEffectiveness  string `json:"how_to_measure_effectiveness"`
	ExpectedEngagementPatterns string `json:"expected_engagement_patterns"`
	GrowthOpportunities        string `json:"growth_opportunities"`
}

type TrendAnalysis struct {
	CurrentTrends     string `json:"current_trends"`
	FuturePredictions string `json:"future_predictions"`
}

type VideoOrganization struct {
	AnalyzedVideos  []AnalyzedVideo `json:"analyzed_videos"`
	TopMatches      TopMatches      `json:"top_matches"`
	SimilarContent  []VideoRef      `json:"similar_content"`
	TrendingContent []VideoRef      `json:"trending_content"`
}

type TopMatches struct {
	Trending []VideoRef `json:"trending"`
	Search   []VideoRef `json:"search"`
}

// AnalyzedVideo is a deep-analyzed video in the report. EngagementRate is a
// whole percentage.
type AnalyzedVideo struct {
	VideoID       string             `json:"video_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Statistics    AnalyzedStatistics `json:"statistics"`
	Analysis      string             `json:"analysis"`
	CurrentTrends string             `json:"current_trends"`
	FutureTrends  string             `json:"future_trends"`
	VideoURL      string             `json:"video_url"`
}

type AnalyzedStatistics struct {
	Views          Count `json:"views"`
	Likes          Count `json:"likes"`
	Comments       Count `json:"comments"`
	Subscribers    Count `json:"subscribers"`
	ViewsPerDay    Count `json:"views_per_day"`
	EngagementRate Count `json:"engagement_rate"`
}

type VideoRef struct {
	VideoID    string        `json:"video_id"`
	Title      string        `json:"title"`
	Statistics RefStatistics `json:"statistics"`
	VideoURL   string        `json:"video_url"`
}

type RefStatistics struct {
	Views    Count `json:"views"`
	Likes    Count `json:"likes"`
	Comments Count `json:"comments"`
}

// IsZero reports whether nothing was decoded into the report.
func (r StrategyReport) IsZero() bool {
	return r.TargetAudience == "" &&
		r.OverallGoal == "" &&
		len(r.ContentRecommendations.ContentTypes) == 0 &&
		len(r.MarketingTactics.RecommendedTagsAndKeywords) == 0 &&
		len(r.Videos.AnalyzedVideos) == 0 &&
		len(r.Videos.TopMatches.Trending) == 0 &&
		len(r.Videos.TopMatches.Search) == 0 &&
		len(r.Videos.SimilarContent) == 0 &&
		len(r.Videos.TrendingContent) == 0
}
