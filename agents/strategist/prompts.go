package strategist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"video-strategist/internal/models"
	"video-strategist/shared/ai"
)

const (
	plannerSystem    = "You turn content marketing requests into YouTube search keywords."
	strategistSystem = "You are a marketing strategy expert for short-form and long-form video."

	maxKeywordLength = 60
)

// planTopic reduces the request to a search keyword. The trimmed prompt is used
// when the generator fails or answers with something that is not a keyword.
func (p *Pipeline) planTopic(ctx context.Context, prompt string) (topic, rationale string) {
	prompt = strings.TrimSpace(prompt)

	text, err := p.generator.Generate(ctx, ai.Prompt{
		System: plannerSystem,
		User: fmt.Sprintf(`Request: %q

If the request already is a keyword, return it exactly. Otherwise return the single main keyword.
Answer with the keyword only, no punctuation or explanation.`, prompt),
		Temperature: p.temperature,
	})
	if err != nil {
		return prompt, fmt.Sprintf("Keyword planning failed (%v); searching for the request as given.", err)
	}

	keyword := strings.Trim(ai.StripCodeFence(text), " \t\r\n\"'`.")
	if keyword == "" || strings.ContainsAny(keyword, "\n\r") || len(keyword) > maxKeywordLength {
		return prompt, "The request is already a search phrase; searching for it as given."
	}
	if strings.EqualFold(keyword, prompt) {
		return keyword, "The request is a keyword; searching for it exactly."
	}
	return keyword, fmt.Sprintf("Reduced the request to its main keyword %q.", keyword)
}

func candidateStageText(rationale string, rc RunContext, set models.CandidateSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Keyword decision: %s\n", rationale)
	fmt.Fprintf(&b, "Search keyword: %s\nRegion: %s\nContent type: %s\n", set.Topic, set.Region, rc.ContentType)
	if set.Error != "" {
		fmt.Fprintf(&b, "Source error: %s\n", set.Error)
	}
	fmt.Fprintf(&b, "Results (%d):\n%s\n", len(set.Videos), mustJSON(set.Videos))
	return b.String()
}

func selectionStageText(sel models.SelectionResult) string {
	return mustJSON(sel)
}

type analysisStage struct {
	Analyzed         []models.AnalysisResult `json:"analyzed_videos"`
	RemainingMetrics []models.AnalysisResult `json:"remaining_videos_metrics"`
	Errors           []string                `json:"errors,omitempty"`
}

func analysisStageText(s analysisStage) string {
	return mustJSON(s)
}

func synthesisPrompt(rc RunContext) string {
	return fmt.Sprintf(`Original request: %q
Content type: %s
Region: %s

Prior analysis:

%s
Using all of the analysis above, develop a marketing strategy for the request. Be specific,
attention-grabbing and grounded in the analyzed videos, not generic.

Cover content recommendations (content types, visual style, audio and music, storytelling,
editing style and pacing), marketing tactics (the top 10 tags and keywords with how often each
appears across the candidate videos, title and description optimization, thumbnail design,
posting times and frequency, audience engagement), success metrics, and current and future
trends.

Organize the videos as: analyzed_videos = the deeply analyzed videos; top_matches = up to 3
remaining trending and up to 3 remaining search videos; similar_content = up to 5 videos
similar to the analyzed ones; trending_content = up to 5 additional trending videos. Only use
video ids that appear above.

Every numeric value must be a JSON integer, never a string. engagement_rate is a whole
percentage. recommended_tags_and_keywords is a list of [keyword, count] pairs.

Respond ONLY with one JSON object of exactly this shape, no explanation or other text:
%s`, rc.Prompt, rc.ContentType, rc.Region, rc.Render(), schemaExample)
}

var schemaExample = mustJSON(models.ReportDocument{MarketingStrategy: &models.StrategyReport{
	TargetAudience: "<target audience>",
	OverallGoal:    "<overall marketing goal>",
	ContentRecommendations: models.ContentRecommendations{
		ContentTypes:          []string{"<content type 1>", "<content type 2>", "<content type 3>"},
		VisualStyle:           "<visual style>",
		AudioMusic:            "<audio and music>",
		StorytellingApproach:  "<storytelling style and tone>",
		EditingStyleAndPacing: "<editing style, pacing and duration>",
	},
	MarketingTactics: models.MarketingTactics{
		RecommendedTagsAndKeywords:      []models.KeywordCount{{Keyword: "<keyword1>", Count: 0}, {Keyword: "<keyword2>", Count: 0}},
		TitleAndDescriptionOptimization: "<titles and descriptions>",
		ThumbnailDesignRecommendations:  "<thumbnails>",
		BestPostingTimesAndFrequency:    "<posting schedule>",
		AudienceEngagementStrategies:    "<engagement and community>",
	},
	SuccessMetrics: models.SuccessMetrics{
		HowToMeasureEffectiveness:  "<key performance indicators>",
		ExpectedEngagementPatterns: "<expected engagement>",
		GrowthOpportunities:        "<growth ideas>",
	},
	TrendAnalysis: models.TrendAnalysis{
		CurrentTrends:     "<current trends>",
		FuturePredictions: "<future predictions>",
	},
	Videos: models.VideoOrganization{
		AnalyzedVideos: []models.AnalyzedVideo{{
			VideoID:       "<video id>",
			Title:         "<title>",
			Description:   "<description>",
			Analysis:      "<key insights from the deep analysis>",
			CurrentTrends: "<current trends this video follows>",
			FutureTrends:  "<future trend predictions>",
			VideoURL:      "<video url>",
		}},
		TopMatches: models.TopMatches{
			Trending: []models.VideoRef{exampleRef},
			Search:   []models.VideoRef{exampleRef},
		},
		SimilarContent:  []models.VideoRef{exampleRef},
		TrendingContent: []models.VideoRef{exampleRef},
	},
}})

var exampleRef = models.VideoRef{VideoID: "<video id>", Title: "<title>", VideoURL: "<video url>"}

func mustJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
