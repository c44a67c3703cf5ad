package strategist

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"video-strategist/internal/models"
	"video-strategist/shared/ai"
)

// ErrSynthesis means the final stage produced no usable report.
var ErrSynthesis = errors.New("strategy synthesis failed")

// Draft is generated synthesis text that has not been validated yet.
type Draft struct {
	Raw string
}

// Parse strips one surrounding code fence and decodes the report. The object
// may be wrapped in "marketing_strategy" or bare.
func (d Draft) Parse() (*models.StrategyReport, error) {
	body := ai.StripCodeFence(d.Raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty output", ErrSynthesis)
	}

	var doc models.ReportDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	report := doc.MarketingStrategy
	if report == nil {
		var bare models.StrategyReport
		if err := json.Unmarshal([]byte(body), &bare); err == nil {
			report = &bare
		}
	}
	if report == nil || report.IsZero() {
		return nil, fmt.Errorf("%w: output has no marketing_strategy object", ErrSynthesis)
	}
	return report, nil
}

// evidence is what the run measured, used to correct generated statistics.
type evidence struct {
	deep     []models.VideoAnalysis // featured order
	measured map[string]models.VideoAnalysis
}

func newEvidence(deep, snapshots []models.AnalysisResult) evidence {
	ev := evidence{measured: map[string]models.VideoAnalysis{}}
	for _, r := range snapshots {
		if r.OK() {
			ev.measured[r.VideoID] = *r.Analysis
		}
	}
	for _, r := range deep {
		if r.OK() {
			ev.deep = append(ev.deep, *r.Analysis)
			ev.measured[r.VideoID] = *r.Analysis
		}
	}
	return ev
}

// reconcile replaces generated numbers with measured ones. Analyzed videos are
// rebuilt to exactly the deep-analyzed set, keeping the generated narrative of
// matching entries.
func reconcile(report *models.StrategyReport, ev evidence) {
	v := &report.Videos

	if len(ev.deep) > 0 {
		generated := map[string]models.AnalyzedVideo{}
		for _, av := range v.AnalyzedVideos {
			generated[av.VideoID] = av
		}
		analyzed := make([]models.AnalyzedVideo, 0, len(ev.deep))
		for _, a := range ev.deep {
			av, ok := generated[a.ID]
			if !ok {
				av = models.AnalyzedVideo{VideoID: a.ID, Analysis: a.ContentAnalysis}
			}
			if av.Title == "" {
				av.Title = a.Title
			}
			if av.Description == "" {
				av.Description = a.Description
			}
			av.Statistics = analyzedStatistics(a)
			av.VideoURL = a.URL
			analyzed = append(analyzed, av)
		}
		v.AnalyzedVideos = analyzed
	} else {
		for i := range v.AnalyzedVideos {
			fillURL(&v.AnalyzedVideos[i].VideoURL, v.AnalyzedVideos[i].VideoID)
		}
	}

	for _, refs := range [][]models.VideoRef{v.TopMatches.Trending, v.TopMatches.Search, v.SimilarContent, v.TrendingContent} {
		for i := range refs {
			ref := &refs[i]
			if a, ok := ev.measured[ref.VideoID]; ok {
				ref.Statistics = models.RefStatistics{
					Views:    models.Count(a.Statistics.ViewCount),
					Likes:    models.Count(a.Statistics.LikeCount),
					Comments: models.Count(a.Statistics.CommentCount),
				}
				if ref.Title == "" {
					ref.Title = a.Title
				}
			}
			fillURL(&ref.VideoURL, ref.VideoID)
		}
	}
}

func analyzedStatistics(a models.VideoAnalysis) models.AnalyzedStatistics {
	stats := models.AnalyzedStatistics{
		Views:          models.Count(a.Statistics.ViewCount),
		Likes:          models.Count(a.Statistics.LikeCount),
		Comments:       models.Count(a.Statistics.CommentCount),
		ViewsPerDay:    models.Count(math.Round(a.Statistics.ViewsPerDay)),
		EngagementRate: models.Count(math.Round(a.Statistics.EngagementRate * 100)),
	}
	if a.Channel != nil && a.Channel.SubscriberCount != nil {
		stats.Subscribers = models.Count(*a.Channel.SubscriberCount)
	}
	return stats
}

func fillURL(dst *string, id string) {
	if id != "" {
		*dst = models.WatchURL(id)
	}
}
