package blogapi

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/blogapi/content"
)

func feedConfig() Config {
	cfg := Config{URL: "https://clothes2wear.com"}
	cfg.setDefaults()
	return cfg
}

func TestWriteFeed(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	posts := []content.Post{{
		Title:                 "Linen & Lace",
		Slug:                  "linen-lace",
		ThumbnailImageAltText: "Shirts <on> a rack",
		Categories:            []content.Category{{Name: "Street Style"}},
		Tags:                  []content.Tag{{Name: "summer"}},
		CreatedAt:             created,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteFeed(&buf, feedConfig(), posts, created.Add(time.Hour)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, `<rss version="2.0">`)
	assert.Contains(t, out, "<title>Clothes2Wear Blog</title>")
	assert.Contains(t, out, "<language>en-us</language>")
	assert.Contains(t, out, "<lastBuildDate>Fri, 01 Mar 2024 11:00:00 GMT</lastBuildDate>")
	assert.Contains(t, out, "<title>Linen &amp; Lace</title>")
	assert.Contains(t, out, "<link>https://clothes2wear.com/blogs/linen-lace</link>")
	assert.Contains(t, out, `<guid isPermaLink="true">https://clothes2wear.com/blogs/linen-lace</guid>`)
	assert.Contains(t, out, "<pubDate>Fri, 01 Mar 2024 10:00:00 GMT</pubDate>")
	assert.Contains(t, out, "<description>Shirts &lt;on&gt; a rack</description>")
	assert.Contains(t, out, "<category>Street Style</category>")
	assert.Contains(t, out, "<category>summer</category>")

	var doc rssXML
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Channel.Items, 1)
	assert.Equal(t, []string{"Street Style", "summer"}, doc.Channel.Items[0].Categories)
}

func TestFeedOnlyListsActivePosts(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	cat, err := a.Categories.Create(ctx, content.CategoryInput{Name: "Street Style"})
	require.NoError(t, err)

	input := func(title string) content.PostInput {
		return content.PostInput{
			Title:          title,
			UserID:         "author-1",
			ThumbnailImage: "thumb.jpg",
			Content:        "<p>Body</p>",
			Categories:     []string{cat.ID},
		}
	}
	active, err := a.Posts.Create(ctx, input("Active Post"))
	require.NoError(t, err)
	_, err = a.Posts.SetStatus(ctx, active.ID, content.StatusActive)
	require.NoError(t, err)
	_, err = a.Posts.Create(ctx, input("Pending Post"))
	require.NoError(t, err)

	rec := a.do(t, call{method: http.MethodGet, path: "/feed.xml"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, rec.Body.String(), "<title>Active Post</title>")
	assert.NotContains(t, rec.Body.String(), "Pending Post")

	out := filepath.Join(t.TempDir(), "public", "rss.xml")
	n, err := a.GenerateFeed(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://clothes2wear.com/blogs/active-post")

	rec = a.do(t, call{method: http.MethodGet, path: "/sitemap.xml"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://clothes2wear.com/blogs/active-post</loc>")
	assert.Contains(t, rec.Body.String(), "<loc>https://clothes2wear.com/category/street-style</loc>")
	assert.NotContains(t, rec.Body.String(), "pending-post")
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "https://example.com", BuildURL("https://example.com"))
	assert.Equal(t, "https://example.com/blogs/a", BuildURL("https://example.com", "blogs", "a"))
	assert.Equal(t, "https://example.com/shop/blogs/a", BuildURL("https://example.com/shop/", "blogs", "a"))
}

func TestHealthz(t *testing.T) {
	a := newTestApp(t)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[messageResponse](t, rec).Message)
}
