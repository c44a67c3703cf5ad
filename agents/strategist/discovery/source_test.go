package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"video-strategist/agents/strategist/youtube"
	"video-strategist/internal/models"
	"video-strategist/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeProvider struct {
	ids       []string
	items     []youtube.Item
	searchErr error
	videosErr error

	queries     []youtube.SearchQuery
	videoCalls  int
	requestedID []string
}

func (f *fakeProvider) Search(_ context.Context, q youtube.SearchQuery) ([]string, error) {
	f.queries = append(f.queries, q)
	return f.ids, f.searchErr
}

func (f *fakeProvider) Videos(_ context.Context, ids []string) ([]youtube.Item, error) {
	f.videoCalls++
	f.requestedID = ids
	return f.items, f.videosErr
}

func pipelineConfig() *config.PipelineConfig {
	return &config.PipelineConfig{
		DefaultRegion:      "IN",
		MaxResults:         15,
		TrendingWindowDays: 30,
		SearchWindowDays:   120,
	}
}

func item(id, duration string) youtube.Item {
	return youtube.Item{
		ID:          id,
		Title:       "title " + id,
		Duration:    duration,
		PublishedAt: "2025-06-05T12:00:00Z",
		Tags:        []string{"drone"},
	}
}

func newTestSource(newFn func(Provider, *config.PipelineConfig) *Source, p Provider) *Source {
	s := newFn(p, pipelineConfig())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestFetchFiltersByContentType(t *testing.T) {
	p := &fakeProvider{
		ids:   []string{"a", "b", "c", "d"},
		items: []youtube.Item{item("a", "PT45S"), item("b", "PT1M30S"), item("c", "PT60S"), item("d", "PT1M1S")},
	}

	tests := []struct {
		contentType models.ContentType
		want        []string
	}{
		{models.ContentShorts, []string{"a", "c"}},
		{models.ContentVideos, []string{"b", "d"}},
		{models.ContentBoth, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.contentType), func(t *testing.T) {
			set := newTestSource(NewTrending, p).Fetch(context.Background(), Query{Topic: "drones", Region: "US", ContentType: tt.contentType})
			assert.Empty(t, set.Error)
			assert.Equal(t, tt.want, set.IDs())
			for _, v := range set.Videos {
				assert.True(t, tt.contentType.Allows(v.DurationSeconds))
			}
		})
	}
}

func TestFetchCapsAtTen(t *testing.T) {
	p := &fakeProvider{}
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("v%02d", i)
		p.ids = append(p.ids, id)
		p.items = append(p.items, item(id, "PT30S"))
	}

	set := newTestSource(NewSearch, p).Fetch(context.Background(), Query{Topic: "drones", ContentType: models.ContentShorts})
	require.Len(t, set.Videos, models.MaxCandidates)
	assert.Equal(t, "v00", set.Videos[0].ID)
	assert.Equal(t, "v09", set.Videos[9].ID)
}

func TestFetchComputesCandidateFields(t *testing.T) {
	it := item("a", "PT45S")
	it.Tags = nil
	bad := item("b", "PT20S")
	bad.PublishedAt = "not a date"
	p := &fakeProvider{ids: []string{"a", "b"}, items: []youtube.Item{it, bad}}

	set := newTestSource(NewTrending, p).Fetch(context.Background(), Query{Topic: "drones", ContentType: models.ContentShorts})
	require.Len(t, set.Videos, 2)

	a := set.Videos[0]
	assert.Equal(t, 45, a.DurationSeconds)
	require.NotNil(t, a.AgeDays)
	assert.Equal(t, 10, *a.AgeDays)
	assert.NotNil(t, a.Tags)
	assert.Zero(t, a.TagCount)

	b := set.Videos[1]
	assert.Nil(t, b.AgeDays)
	assert.Nil(t, b.PublishedAt)
	assert.Equal(t, 1, b.TagCount)
}

func TestSourcesDifferInCutoffAndHint(t *testing.T) {
	tp := &fakeProvider{}
	sp := &fakeProvider{}
	q := Query{Topic: "drone photography", Region: "US", ContentType: models.ContentShorts}

	trending := newTestSource(NewTrending, tp).Fetch(context.Background(), q)
	search := newTestSource(NewSearch, sp).Fetch(context.Background(), q)

	assert.Equal(t, SourceTrending, trending.Source)
	assert.Equal(t, SourceSearch, search.Source)

	require.Len(t, tp.queries, 1)
	require.Len(t, sp.queries, 1)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), tp.queries[0].PublishedAfter)
	assert.Equal(t, fixedNow.AddDate(0, 0, -120), sp.queries[0].PublishedAfter)
	assert.Empty(t, tp.queries[0].DurationHint)
	assert.Equal(t, "short", sp.queries[0].DurationHint)
	assert.Equal(t, int64(15), sp.queries[0].MaxResults)

	both := newTestSource(NewSearch, sp).Fetch(context.Background(), Query{Topic: "x", ContentType: models.ContentBoth})
	assert.Empty(t, both.Error)
	assert.Empty(t, sp.queries[1].DurationHint)
}

func TestFetchSkipsLookupWithoutIDs(t *testing.T) {
	p := &fakeProvider{}
	set := newTestSource(NewSearch, p).Fetch(context.Background(), Query{Topic: "nothing", ContentType: models.ContentBoth})
	assert.Empty(t, set.Videos)
	assert.NotNil(t, set.Videos)
	assert.Zero(t, p.videoCalls)
}

func TestFetchProviderFailure(t *testing.T) {
	tests := []struct {
		name string
		p    *fakeProvider
	}{
		{"search fails", &fakeProvider{searchErr: errors.New("quotaExceeded")}},
		{"lookup fails", &fakeProvider{ids: []string{"a"}, videosErr: errors.New("quotaExceeded")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := newTestSource(NewTrending, tt.p).Fetch(context.Background(), Query{Topic: "drones", ContentType: models.ContentShorts})
			assert.Empty(t, set.Videos)
			assert.Contains(t, set.Error, "quotaExceeded")
			assert.Equal(t, "drones", set.Topic)
		})
	}
}

func TestRegionNormalization(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"US", "US"},
		{"us", "US"},
		{" gb ", "GB"},
		{"", "IN"},
		{"XX", "IN"},
		{"USA", "IN"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p := &fakeProvider{}
			set := newTestSource(NewTrending, p).Fetch(context.Background(), Query{Topic: "t", Region: tt.in})
			assert.Equal(t, tt.want, set.Region)
			assert.Equal(t, tt.want, p.queries[0].Region)
		})
	}
}
