package blogapi

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogapi/content"
)

// FeedSize is the number of newest ACTIVE posts in the feed.
const FeedSize = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// BuildFeed assembles the RSS document for posts. Categories and tags both
// become <category> elements.
func BuildFeed(cfg Config, posts []content.Post, now time.Time) rssXML {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link := BuildURL(cfg.URL, "blogs", p.Slug)
		cats := make([]string, 0, len(p.Categories)+len(p.Tags))
		for _, c := range p.Categories {
			cats = append(cats, c.Name)
		}
		for _, t := range p.Tags {
			cats = append(cats, t.Name)
		}
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			PubDate:     p.CreatedAt.UTC().Format(http.TimeFormat),
			Description: p.ThumbnailImageAltText,
			Categories:  cats,
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         cfg.Name,
			Link:          cfg.URL,
			Description:   cfg.Description,
			Language:      "en-us",
			LastBuildDate: now.UTC().Format(http.TimeFormat),
			Items:         items,
		},
	}
}

// WriteFeed writes the XML declaration and the encoded feed to w.
func WriteFeed(w io.Writer, cfg Config, posts []content.Post, now time.Time) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(BuildFeed(cfg, posts, now)); err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	return nil
}

// GenerateFeed writes the feed of the newest ACTIVE posts to path.
func (a *App) GenerateFeed(ctx context.Context, path string) (int, error) {
	posts, err := a.Posts.Feed(ctx, FeedSize)
	if err != nil {
		return 0, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if err := WriteFeed(f, a.Config, posts, time.Now()); err != nil {
		f.Close()
		return 0, err
	}
	return len(posts), f.Close()
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Posts.Feed(c.Request().Context(), FeedSize)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return WriteFeed(c.Response(), a.Config, posts, time.Now())
}
