package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

type fakeAPI struct {
	mu      sync.Mutex
	queries map[string]url.Values
	status  map[string]int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resource := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	f.mu.Lock()
	f.queries[resource] = r.URL.Query()
	status := f.status[resource]
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	var body any
	switch resource {
	case "search":
		body = map[string]any{"items": []any{
			map[string]any{"id": map[string]any{"kind": "youtube#video", "videoId": "vid1"}},
			map[string]any{"id": map[string]any{"kind": "youtube#channel", "channelId": "ch9"}},
			map[string]any{"id": map[string]any{"kind": "youtube#video", "videoId": "vid2"}},
		}}
	case "videos":
		body = map[string]any{"items": []any{
			map[string]any{
				"id": "vid1",
				"snippet": map[string]any{
					"title":        "Drone over the fjords",
					"description":  "FPV cinematic",
					"channelId":    "ch1",
					"channelTitle": "SkyLab",
					"publishedAt":  "2025-05-01T10:00:00Z",
					"tags":         []string{"drone", "fpv"},
					"categoryId":   "19",
				},
				"contentDetails": map[string]any{"duration": "PT45S"},
				"statistics":     map[string]any{"viewCount": "1000", "likeCount": "50", "commentCount": "10"},
				"topicDetails":   map[string]any{"topicCategories": []string{"https://en.wikipedia.org/wiki/Tourism"}},
			},
		}}
	case "commentThreads":
		items := []any{}
		for i, text := range []string{"wow", "great", "where is this", "nice"} {
			items = append(items, map[string]any{"snippet": map[string]any{
				"topLevelComment": map[string]any{"snippet": map[string]any{
					"textDisplay": text,
					"likeCount":   10 - i,
					"publishedAt": "2025-05-02T00:00:00Z",
				}},
			}})
		}
		body = map[string]any{"items": items}
	case "channels":
		body = map[string]any{"items": []any{
			map[string]any{
				"id":               "ch1",
				"snippet":          map[string]any{"title": "SkyLab", "description": "Aerial films"},
				"statistics":       map[string]any{"subscriberCount": "12000", "videoCount": "85", "hiddenSubscriberCount": false},
				"brandingSettings": map[string]any{"channel": map[string]any{"country": "NO"}},
			},
		}}
	default:
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{queries: map[string]url.Values{}, status: map[string]int{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := youtube.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return NewClientWithService(svc, 5*time.Second), api
}

func TestClientSearch(t *testing.T) {
	c, api := newTestClient(t)
	after := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	ids, err := c.Search(context.Background(), SearchQuery{
		Query:          "drone photography",
		Region:         "US",
		MaxResults:     15,
		PublishedAfter: after,
		DurationHint:   "short",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"vid1", "vid2"}, ids)

	q := api.queries["search"]
	assert.Equal(t, "drone photography", q.Get("q"))
	assert.Equal(t, "US", q.Get("regionCode"))
	assert.Equal(t, "viewCount", q.Get("order"))
	assert.Equal(t, "video", q.Get("type"))
	assert.Equal(t, "15", q.Get("maxResults"))
	assert.Equal(t, "short", q.Get("videoDuration"))
	assert.Equal(t, "2025-04-01T00:00:00Z", q.Get("publishedAfter"))
}

func TestClientSearchWithoutHint(t *testing.T) {
	c, api := newTestClient(t)

	_, err := c.Search(context.Background(), SearchQuery{Query: "drones", MaxResults: 5})
	require.NoError(t, err)
	assert.Empty(t, api.queries["search"].Get("videoDuration"))
	assert.Empty(t, api.queries["search"].Get("publishedAfter"))
}

func TestClientVideos(t *testing.T) {
	c, api := newTestClient(t)

	items, err := c.Videos(context.Background(), []string{"vid1", "missing"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	assert.Equal(t, "vid1", got.ID)
	assert.Equal(t, "Drone over the fjords", got.Title)
	assert.Equal(t, "ch1", got.ChannelID)
	assert.Equal(t, "PT45S", got.Duration)
	assert.Equal(t, []string{"drone", "fpv"}, got.Tags)
	assert.Equal(t, int64(1000), got.Views)
	assert.Equal(t, int64(50), got.Likes)
	assert.Equal(t, int64(10), got.Comments)
	assert.Len(t, got.TopicCategories, 1)

	assert.Equal(t, "vid1,missing", api.queries["videos"].Get("id"))
}

func TestClientVideosSkipsEmptyBatch(t *testing.T) {
	c, api := newTestClient(t)

	items, err := c.Videos(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotContains(t, api.queries, "videos")
}

func TestClientVideosCapsBatch(t *testing.T) {
	c, api := newTestClient(t)

	ids := make([]string, 60)
	for i := range ids {
		ids[i] = "v"
	}
	_, err := c.Videos(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, strings.Split(api.queries["videos"].Get("id"), ","), MaxBatchIDs)
}

func TestClientTopComments(t *testing.T) {
	c, api := newTestClient(t)

	comments, err := c.TopComments(context.Background(), "vid1", 100, 3)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "wow", comments[0].Text)
	assert.Equal(t, int64(10), comments[0].LikeCount)

	q := api.queries["commentThreads"]
	assert.Equal(t, "relevance", q.Get("order"))
	assert.Equal(t, "100", q.Get("maxResults"))
	assert.Equal(t, "vid1", q.Get("videoId"))
}

func TestClientChannel(t *testing.T) {
	c, _ := newTestClient(t)

	profile, err := c.Channel(context.Background(), "ch1")
	require.NoError(t, err)
	require.NotNil(t, profile.Title)
	assert.Equal(t, "SkyLab", *profile.Title)
	require.NotNil(t, profile.SubscriberCount)
	assert.Equal(t, int64(12000), *profile.SubscriberCount)
	require.NotNil(t, profile.VideoCount)
	assert.Equal(t, int64(85), *profile.VideoCount)
	require.NotNil(t, profile.Country)
	assert.Equal(t, "NO", *profile.Country)
}

func TestClientProviderErrors(t *testing.T) {
	c, api := newTestClient(t)
	api.status["search"] = http.StatusForbidden
	api.status["channels"] = http.StatusForbidden

	_, err := c.Search(context.Background(), SearchQuery{Query: "drones", MaxResults: 5})
	assert.Error(t, err)

	profile, err := c.Channel(context.Background(), "ch1")
	assert.Error(t, err)
	assert.Equal(t, "ch1", profile.ID)
	assert.Nil(t, profile.Title)
}
