// Package images enriches POIs with image URLs from free Wikipedia and
// Wikimedia Commons endpoints (spec.md 4.6). Enrichment is best-effort:
// any failure leaves a POI with no images rather than failing the request.
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/exotic-travel-booking/backend/internal/httpclient"
)

const (
	wikipediaActionAPI = "https://en.wikipedia.org/w/api.php"
	wikipediaRestAPI   = "https://en.wikipedia.org/api/rest_v1/page/summary"
	commonsAPI         = "https://commons.wikimedia.org/w/api.php"
	clientName         = "images"

	perPOITimeout = 10 * time.Second
)

// Enricher fetches images for a POI from Wikipedia/Wikimedia Commons.
type Enricher struct {
	client  *http.Client
	limiter *httpclient.Limiter
}

// New builds an Enricher. Requests are capped to 3 concurrent (spec 5).
func New(pool *httpclient.Pool) *Enricher {
	return &Enricher{
		client:  pool.Client(clientName),
		limiter: httpclient.NewLimiter(3, 0, 0),
	}
}

// ImagesFor fetches up to count image URLs for name/city, following the
// pipeline from spec 4.6: parallel page-image + Commons search, falling
// back to the page-summary endpoint (with disambiguated variants) only if
// both yield nothing. Wrapped in a hard per-POI timeout; any failure
// returns an empty (not nil-error) slice.
func (e *Enricher) ImagesFor(ctx context.Context, name, city string, count int) []string {
	ctx, cancel := context.WithTimeout(ctx, perPOITimeout)
	defer cancel()

	type wikiResult struct {
		image string
	}
	type commonsResult struct {
		images []string
	}

	wikiCh := make(chan wikiResult, 1)
	commonsCh := make(chan commonsResult, 1)

	go func() {
		img, _ := e.wikipediaPageImage(ctx, name, city)
		wikiCh <- wikiResult{image: img}
	}()
	go func() {
		imgs, _ := e.commonsImages(ctx, name, city, count)
		commonsCh <- commonsResult{images: imgs}
	}()

	var images []string
	wiki := <-wikiCh
	if wiki.image != "" {
		images = append(images, wiki.image)
	}
	commons := <-commonsCh
	for _, img := range commons.images {
		if len(images) >= count {
			break
		}
		if !contains(images, img) {
			images = append(images, img)
		}
	}

	if len(images) == 0 {
		if img, ok := e.restAPIFallback(ctx, name, city); ok {
			images = append(images, img)
		}
	}

	if len(images) > count {
		images = images[:count]
	}
	return images
}

type pageImagesResponse struct {
	Query struct {
		Pages map[string]struct {
			Thumbnail struct {
				Source string `json:"source"`
			} `json:"thumbnail"`
		} `json:"pages"`
	} `json:"query"`
}

func (e *Enricher) wikipediaPageImage(ctx context.Context, name, city string) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"generator":   {"search"},
		"gsrsearch":   {name + " " + city},
		"gsrlimit":    {"1"},
		"prop":        {"pageimages"},
		"piprop":      {"thumbnail"},
		"pithumbsize": {"800"},
	}

	var resp pageImagesResponse
	if err := e.get(ctx, wikipediaActionAPI, params, &resp); err != nil {
		return "", err
	}
	for _, page := range resp.Query.Pages {
		if page.Thumbnail.Source != "" {
			return page.Thumbnail.Source, nil
		}
	}
	return "", nil
}

type commonsResponse struct {
	Query struct {
		Pages map[string]struct {
			ImageInfo []struct {
				URL       string `json:"url"`
				ThumbURL  string `json:"thumburl"`
				Mime      string `json:"mime"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

func (e *Enricher) commonsImages(ctx context.Context, name, city string, count int) ([]string, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"generator":   {"search"},
		"gsrsearch":   {name + " " + city},
		"gsrnamespace": {"6"},
		"gsrlimit":    {fmt.Sprintf("%d", count+3)},
		"prop":        {"imageinfo"},
		"iiprop":      {"url|mime"},
		"iiurlwidth":  {"800"},
	}

	var resp commonsResponse
	if err := e.get(ctx, commonsAPI, params, &resp); err != nil {
		return nil, err
	}

	var images []string
	for _, page := range resp.Query.Pages {
		for _, info := range page.ImageInfo {
			if !strings.HasPrefix(info.Mime, "image/") || strings.Contains(info.Mime, "svg") {
				continue
			}
			u := info.ThumbURL
			if u == "" {
				u = info.URL
			}
			if u != "" && !contains(images, u) {
				images = append(images, u)
			}
			if len(images) >= count {
				return images, nil
			}
		}
	}
	return images, nil
}

type summaryResponse struct {
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	OriginalImage struct {
		Source string `json:"source"`
	} `json:"originalimage"`
}

// restAPIFallback tries the page-summary endpoint with the original name
// and two disambiguated variants (spec 4.6 step 2).
func (e *Enricher) restAPIFallback(ctx context.Context, name, city string) (string, bool) {
	queries := []string{
		name,
		fmt.Sprintf("%s (%s)", name, city),
		fmt.Sprintf("%s %s", name, city),
	}

	for _, q := range queries {
		reqURL := wikipediaRestAPI + "/" + strings.ReplaceAll(q, " ", "_")
		var resp summaryResponse
		if err := e.get(ctx, reqURL, nil, &resp); err != nil {
			continue
		}
		if resp.Thumbnail.Source != "" {
			return upscaleThumbnail(resp.Thumbnail.Source), true
		}
		if resp.OriginalImage.Source != "" {
			return resp.OriginalImage.Source, true
		}
	}
	return "", false
}

func upscaleThumbnail(src string) string {
	src = strings.ReplaceAll(src, "/50px-", "/800px-")
	src = strings.ReplaceAll(src, "/60px-", "/800px-")
	return src
}

func (e *Enricher) get(ctx context.Context, baseURL string, params url.Values, dest interface{}) error {
	if err := e.limiter.Acquire(ctx); err != nil {
		return err
	}
	defer e.limiter.Release()

	reqURL := baseURL
	if params != nil {
		reqURL += "?" + params.Encode()
	}

	return httpclient.DoWithRetry(ctx, 300*time.Millisecond, func() (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return 0, err
		}
		resp, err := e.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, fmt.Errorf("image api returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, err
		}
		return resp.StatusCode, json.Unmarshal(body, dest)
	})
}

func contains(slice []string, v string) bool {
	for _, s := range slice {
		if s == v {
			return true
		}
	}
	return false
}
