package youtube

import (
	"time"

	"video-strategist/internal/engagement"
	"video-strategist/internal/models"
)

// Item is a resolved video record.
type Item struct {
	ID              string
	Title           string
	Description     string
	ChannelID       string
	ChannelTitle    string
	PublishedAt     string
	Tags            []string
	CategoryID      string
	Duration        string
	TopicCategories []string
	Views           int64
	Likes           int64
	Comments        int64
}

// DurationSeconds is the parsed length of the video.
func (it Item) DurationSeconds() int {
	return ParseDurationSeconds(it.Duration)
}

// Candidate converts the record, computing its age relative to now.
func (it Item) Candidate(now time.Time) models.VideoCandidate {
	published, age := engagement.ParseAge(it.PublishedAt, now)
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.VideoCandidate{
		ID:              it.ID,
		Title:           it.Title,
		Description:     it.Description,
		ChannelID:       it.ChannelID,
		ChannelTitle:    it.ChannelTitle,
		PublishedAt:     published,
		AgeDays:         age,
		DurationSeconds: it.DurationSeconds(),
		Tags:            tags,
		TagCount:        len(tags),
	}
}

// Counters are the raw engagement counters of the record.
func (it Item) Counters() engagement.Counters {
	return engagement.Counters{Views: it.Views, Likes: it.Likes, Comments: it.Comments}
}
