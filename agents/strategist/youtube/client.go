package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"video-strategist/internal/models"
	"video-strategist/shared/config"
	"video-strategist/shared/monitoring"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// MaxBatchIDs is the most ids one videos lookup accepts.
const MaxBatchIDs = 50

// SearchQuery describes one keyword search.
type SearchQuery struct {
	Query          string
	Region         string
	MaxResults     int64
	PublishedAfter time.Time
	DurationHint   string // "short", "medium" or empty
}

type Client struct {
	service *youtube.Service
	timeout time.Duration
}

// NewClient authenticates with the API key when one is configured and with the
// stored OAuth token otherwise.
func NewClient(ctx context.Context, cfg *config.YouTubeConfig) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.UsesOAuth():
		tok, err := loadToken(cfg.TokenFile)
		if err != nil {
			return nil, err
		}
		ts := &tokenSaver{config: oauthConfig(cfg), token: tok, tokenFile: cfg.TokenFile}
		opts = append(opts, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	default:
		return nil, fmt.Errorf("%w: YouTube API key or OAuth client", config.ErrMissingCredential)
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return NewClientWithService(service, cfg.RequestTimeout), nil
}

func NewClientWithService(service *youtube.Service, timeout time.Duration) *Client {
	return &Client{service: service, timeout: timeout}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Search returns the ids of matching videos, most viewed first.
func (c *Client) Search(ctx context.Context, q SearchQuery) (ids []string, err error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	defer observe("search", time.Now(), &err)

	call := c.service.Search.List([]string{"snippet"}).
		Q(q.Query).
		Type("video").
		Order("viewCount").
		MaxResults(q.MaxResults)
	if q.Region != "" {
		call = call.RegionCode(q.Region)
	}
	if !q.PublishedAfter.IsZero() {
		call = call.PublishedAfter(q.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if q.DurationHint != "" {
		call = call.VideoDuration(q.DurationHint)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Query, err)
	}

	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	slog.Debug("youtube search", "query", q.Query, "region", q.Region, "results", len(ids))
	return ids, nil
}

// Videos resolves up to MaxBatchIDs ids in one request. Unknown ids are absent
// from the result.
func (c *Client) Videos(ctx context.Context, ids []string) (items []Item, err error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatchIDs {
		ids = ids[:MaxBatchIDs]
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	defer observe("videos", time.Now(), &err)

	resp, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics", "topicDetails"}).
		Id(strings.Join(ids, ",")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("videos lookup: %w", err)
	}

	items = make([]Item, 0, len(resp.Items))
	for _, v := range resp.Items {
		items = append(items, toItem(v))
	}
	return items, nil
}

func toItem(v *youtube.Video) Item {
	item := Item{ID: v.Id}
	if s := v.Snippet; s != nil {
		item.Title = s.Title
		item.Description = s.Description
		item.ChannelID = s.ChannelId
		item.ChannelTitle = s.ChannelTitle
		item.PublishedAt = s.PublishedAt
		item.Tags = s.Tags
		item.CategoryID = s.CategoryId
	}
	if v.ContentDetails != nil {
		item.Duration = v.ContentDetails.Duration
	}
	if v.TopicDetails != nil {
		item.TopicCategories = v.TopicDetails.TopicCategories
	}
	if st := v.Statistics; st != nil {
		item.Views = clampUint(st.ViewCount)
		item.Likes = clampUint(st.LikeCount)
		item.Comments = clampUint(st.CommentCount)
	}
	return item
}

// TopComments fetches up to fetch comment threads by relevance and keeps the
// first keep of them.
func (c *Client) TopComments(ctx context.Context, videoID string, fetch int64, keep int) (comments []models.Comment, err error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	defer observe("comment_threads", time.Now(), &err)

	resp, err := c.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(fetch).
		Order("relevance").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("comments for %s: %w", videoID, err)
	}

	comments = []models.Comment{}
	for _, thread := range resp.Items {
		if len(comments) == keep {
			break
		}
		if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		s := thread.Snippet.TopLevelComment.Snippet
		comments = append(comments, models.Comment{
			Text:        s.TextDisplay,
			LikeCount:   max(s.LikeCount, 0),
			PublishedAt: s.PublishedAt,
		})
	}
	return comments, nil
}

// Channel returns the profile of a channel. Fields the API omits stay nil.
func (c *Client) Channel(ctx context.Context, channelID string) (profile models.ChannelProfile, err error) {
	profile = models.ChannelProfile{ID: channelID}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	defer observe("channels", time.Now(), &err)

	resp, err := c.service.Channels.List([]string{"snippet", "statistics", "brandingSettings"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return profile, fmt.Errorf("channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return profile, fmt.Errorf("channel %s not found", channelID)
	}

	ch := resp.Items[0]
	if s := ch.Snippet; s != nil {
		profile.Title = &s.Title
		profile.Description = &s.Description
		if s.Country != "" {
			profile.Country = &s.Country
		}
	}
	if profile.Country == nil && ch.BrandingSettings != nil && ch.BrandingSettings.Channel != nil && ch.BrandingSettings.Channel.Country != "" {
		profile.Country = &ch.BrandingSettings.Channel.Country
	}
	if st := ch.Statistics; st != nil {
		if !st.HiddenSubscriberCount {
			subs := clampUint(st.SubscriberCount)
			profile.SubscriberCount = &subs
		}
		videos := clampUint(st.VideoCount)
		profile.VideoCount = &videos
	}
	return profile, nil
}

func observe(operation string, start time.Time, err *error) {
	monitoring.RecordProviderCall(operation, *err, time.Since(start))
}

func clampUint(n uint64) int64 {
	const maxInt64 = 1<<63 - 1
	if n > maxInt64 {
		return maxInt64
	}
	return int64(n)
}
