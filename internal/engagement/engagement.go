// Package engagement derives per-day rates and view ratios from raw counters.
package engagement

import (
	"time"

	"video-strategist/internal/models"
)

// Counters are the raw statistics reported by the provider.
type Counters struct {
	Views    int64
	Likes    int64
	Comments int64
}

// Compute returns the statistics for the given counters and age. Rates are zero
// when the age is unknown or not positive, ratios are zero when there are no views.
func Compute(c Counters, ageDays *int) models.VideoStatistics {
	stats := models.VideoStatistics{
		ViewCount:    nonNegative(c.Views),
		LikeCount:    nonNegative(c.Likes),
		CommentCount: nonNegative(c.Comments),
	}

	if ageDays != nil && *ageDays > 0 {
		age := float64(*ageDays)
		stats.ViewsPerDay = float64(stats.ViewCount) / age
		stats.LikesPerDay = float64(stats.LikeCount) / age
		stats.CommentsPerDay = float64(stats.CommentCount) / age
	}

	if stats.ViewCount > 0 {
		views := float64(stats.ViewCount)
		stats.LikeViewRatio = float64(stats.LikeCount) / views
		stats.CommentViewRatio = float64(stats.CommentCount) / views
		stats.EngagementRate = float64(stats.LikeCount+stats.CommentCount) / views
	}

	return stats
}

// AgeDays is the number of whole days between published and now. Timestamps
// in the future count as zero days old.
func AgeDays(published, now time.Time) int {
	d := now.Sub(published)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// ParseAge parses an RFC 3339 publish timestamp and returns it with its age.
// Both are nil when the timestamp is empty or unparsable.
func ParseAge(publishedAt string, now time.Time) (*time.Time, *int) {
	if publishedAt == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return nil, nil
	}
	age := AgeDays(t, now)
	return &t, &age
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
