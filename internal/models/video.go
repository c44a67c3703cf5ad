package models

import "time"

// VideoCandidate is a video surfaced by discovery, before deep analysis.
type VideoCandidate struct {
	ID              string     `json:"video_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	ChannelID       string     `json:"channel_id"`
	ChannelTitle    string     `json:"channel_title"`
	PublishedAt     *time.Time `json:"published_at"`
	AgeDays         *int       `json:"video_age_days"`
	DurationSeconds int        `json:"duration_seconds"`
	Tags            []string   `json:"tags"`
	TagCount        int        `json:"tag_count"`
}

// CandidateSet is the bounded, provider-ordered output of one candidate source.
type CandidateSet struct {
	Source string           `json:"source"`
	Topic  string           `json:"topic"`
	Region string           `json:"region_code"`
	Videos []VideoCandidate `json:"videos"`
	Error  string           `json:"error,omitempty"`
}

// MaxCandidates caps every CandidateSet.
const MaxCandidates = 10

// IDs returns the candidate ids in order.
func (s CandidateSet) IDs() []string {
	ids := make([]string, 0, len(s.Videos))
	for _, v := range s.Videos {
		ids = append(ids, v.ID)
	}
	return ids
}

// Find returns the candidate with the given id.
func (s CandidateSet) Find(id string) (VideoCandidate, bool) {
	for _, v := range s.Videos {
		if v.ID == id {
			return v, true
		}
	}
	return VideoCandidate{}, false
}

type VideoStatistics struct {
	ViewCount        int64   `json:"view_count"`
	LikeCount        int64   `json:"like_count"`
	CommentCount     int64   `json:"comment_count"`
	ViewsPerDay      float64 `json:"views_per_day"`
	LikesPerDay      float64 `json:"likes_per_day"`
	CommentsPerDay   float64 `json:"comments_per_day"`
	LikeViewRatio    float64 `json:"like_view_ratio"`
	CommentViewRatio float64 `json:"comment_view_ratio"`
	EngagementRate   float64 `json:"engagement_rate"`
}

type Comment struct {
	Text        string `json:"text"`
	LikeCount   int64  `json:"like_count"`
	PublishedAt string `json:"published_at"`
}

// ChannelProfile describes the uploading channel. Any field but ID may be unknown.
type ChannelProfile struct {
	ID              string  `json:"id"`
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	SubscriberCount *int64  `json:"subscriber_count"`
	VideoCount      *int64  `json:"video_count"`
	Country         *string `json:"country"`
}

// VideoAnalysis is the enriched record for an analyzed video. Deep is false for
// metrics-only snapshots, which carry no comments, channel or assessment.
type VideoAnalysis struct {
	VideoCandidate
	CategoryID        string          `json:"category_id,omitempty"`
	TopicCategories   []string        `json:"topic_categories,omitempty"`
	DurationFormatted string          `json:"duration_formatted"`
	Statistics        VideoStatistics `json:"statistics"`
	Comments          []Comment       `json:"comments,omitempty"`
	Channel           *ChannelProfile `json:"channel,omitempty"`
	ContentAnalysis   string          `json:"content_analysis,omitempty"`
	URL               string          `json:"video_url"`
	Deep              bool            `json:"deep"`
}

// AnalysisResult is the outcome for one requested id: an analysis or an error.
type AnalysisResult struct {
	VideoID  string         `json:"video_id"`
	Analysis *VideoAnalysis `json:"analysis,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// OK reports whether the result carries an analysis.
func (r AnalysisResult) OK() bool {
	return r.Error == "" && r.Analysis != nil
}

// WatchURL is the canonical watch page for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
