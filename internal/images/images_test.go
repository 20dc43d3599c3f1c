package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/exotic-travel-booking/backend/internal/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpscaleThumbnail(t *testing.T) {
	assert.Equal(t, "//upload/800px-Foo.jpg", upscaleThumbnail("//upload/50px-Foo.jpg"))
	assert.Equal(t, "//upload/800px-Foo.jpg", upscaleThumbnail("//upload/60px-Foo.jpg"))
	assert.Equal(t, "//upload/120px-Foo.jpg", upscaleThumbnail("//upload/120px-Foo.jpg"))
}

func TestContainsHelper(t *testing.T) {
	assert.True(t, contains([]string{"a", "b"}, "b"))
	assert.False(t, contains([]string{"a", "b"}, "c"))
}

func TestEnricherGetUnmarshalsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"thumbnail":{"source":"https://example.com/img.jpg"}}`))
	}))
	defer srv.Close()

	pool := httpclient.NewPool()
	pool.Register(clientName, httpclient.DefaultClientConfig())
	e := New(pool)

	var resp summaryResponse
	err := e.get(context.Background(), srv.URL, nil, &resp)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/img.jpg", resp.Thumbnail.Source)
}

func TestEnricherGetNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	pool := httpclient.NewPool()
	pool.Register(clientName, httpclient.DefaultClientConfig())
	e := New(pool)

	var resp summaryResponse
	err := e.get(context.Background(), srv.URL, nil, &resp)
	assert.Error(t, err)
}

func TestWikipediaPageImageParsesThumbnail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"pages":{"123":{"thumbnail":{"source":"https://example.com/thumb.jpg"}}}}}`))
	}))
	defer srv.Close()

	pool := httpclient.NewPool()
	pool.Register(clientName, httpclient.DefaultClientConfig())
	e := New(pool)

	var resp pageImagesResponse
	err := e.get(context.Background(), srv.URL, nil, &resp)
	require.NoError(t, err)
	found := false
	for _, p := range resp.Query.Pages {
		if p.Thumbnail.Source == "https://example.com/thumb.jpg" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCommonsResponseDecodesAllImageInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"pages":{
			"1":{"imageinfo":[{"url":"https://example.com/a.jpg","mime":"image/jpeg"}]},
			"2":{"imageinfo":[{"url":"https://example.com/b.svg","mime":"image/svg+xml"}]}
		}}}`))
	}))
	defer srv.Close()

	pool := httpclient.NewPool()
	pool.Register(clientName, httpclient.DefaultClientConfig())
	e := New(pool)

	var resp commonsResponse
	err := e.get(context.Background(), srv.URL, nil, &resp)
	require.NoError(t, err)

	var urls []string
	for _, p := range resp.Query.Pages {
		for _, info := range p.ImageInfo {
			urls = append(urls, info.URL)
		}
	}
	assert.Contains(t, urls, "https://example.com/a.jpg")
	assert.Contains(t, urls, "https://example.com/b.svg")
}
