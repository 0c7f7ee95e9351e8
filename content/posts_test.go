package content_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/eringen/blogapi/auth"
	"github.com/eringen/blogapi/cache"
	"github.com/eringen/blogapi/content"
	"github.com/eringen/blogapi/store"
)

const imageBase = "https://cdn.example.com/images/"

type fixture struct {
	store      *store.Store
	posts      *content.PostService
	categories *content.CategoryService
	quotes     *content.QuoteService
	images     *content.ImageService
	verifier   *auth.Verifier
}

func setupFixture(t *testing.T, opts ...content.Option) *fixture {
	t.Helper()
	s, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "blog.db"), store.WithLogger(logger.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	v := auth.NewVerifier("secret")
	return &fixture{
		store:      s,
		posts:      content.NewPostService(s, v, imageBase, opts...),
		categories: content.NewCategoryService(s, opts...),
		quotes:     content.NewQuoteService(s),
		images:     content.NewImageService(s),
		verifier:   v,
	}
}

func (f *fixture) category(t *testing.T, name string) *content.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), content.CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func postInput(title string, categoryIDs ...string) content.PostInput {
	return content.PostInput{
		Title:                 title,
		UserID:                "author-1",
		ThumbnailImage:        "thumb.jpg",
		ThumbnailImageAltText: "A thumbnail",
		Content:               "<p>Body</p>",
		Categories:            categoryIDs,
	}
}

func (f *fixture) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := f.verifier.Sign(userID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return tok
}

func TestCreatePostStartsPending(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Street Style")

	p, err := f.posts.Create(ctx, postInput("Summer Looks", cat.ID))
	require.NoError(t, err)
	assert.Equal(t, content.StatusPending, p.Status)
	assert.Equal(t, "summer-looks", p.Slug)
	require.NotNil(t, p.OGImage)
	assert.Equal(t, imageBase+"thumb.jpg", *p.OGImage)

	_, err = f.posts.GetBySlug(ctx, "summer-looks")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestCreatePostSameSlugIsRejected(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")

	_, err := f.posts.Create(ctx, postInput("Hello World", cat.ID))
	require.NoError(t, err)

	_, err = f.posts.Create(ctx, postInput("hello   world!", cat.ID))
	require.ErrorIs(t, err, content.ErrConflict)
	msg, _ := content.Message(err)
	assert.Equal(t, "Title already exists!", msg)

	page, err := f.posts.List(ctx, 0, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalPosts)
}

func TestCreatePostValidation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")

	in := postInput("Title", cat.ID)
	in.Categories = nil
	_, err := f.posts.Create(ctx, in)
	var ve *content.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "At least one category is required for the post.", ve.Fields[0].Message)

	_, err = f.posts.Create(ctx, postInput("Title", "no-such-category"))
	require.True(t, errors.As(err, &ve))

	_, err = f.posts.Create(ctx, postInput("???", cat.ID))
	require.True(t, errors.As(err, &ve))
}

func TestStatusControlsPublicVisibility(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")
	p, err := f.posts.Create(ctx, postInput("Visible Soon", cat.ID))
	require.NoError(t, err)

	_, err = f.posts.SetStatus(ctx, p.ID, content.StatusActive)
	require.NoError(t, err)
	got, err := f.posts.GetBySlug(ctx, "visible-soon")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = f.posts.SetStatus(ctx, p.ID, content.StatusInactive)
	require.NoError(t, err)
	_, err = f.posts.GetBySlug(ctx, "visible-soon")
	assert.ErrorIs(t, err, content.ErrNotFound)

	_, err = f.posts.SetStatus(ctx, "missing", content.StatusActive)
	assert.ErrorIs(t, err, content.ErrNotFound)
	_, err = f.posts.SetStatus(ctx, p.ID, content.StatusPending)
	var ve *content.ValidationError
	assert.True(t, errors.As(err, &ve))
	_, err = f.posts.SetStatus(ctx, "", content.StatusActive)
	assert.True(t, errors.As(err, &ve))
}

func TestStatusChangePurgesCache(t *testing.T) {
	f := setupFixture(t, content.WithCache(cache.NewMemory(time.Minute)))
	ctx := context.Background()
	cat := f.category(t, "News")
	p, err := f.posts.Create(ctx, postInput("Cached", cat.ID))
	require.NoError(t, err)
	_, err = f.posts.SetStatus(ctx, p.ID, content.StatusActive)
	require.NoError(t, err)

	_, err = f.posts.GetBySlug(ctx, "cached")
	require.NoError(t, err)

	_, err = f.posts.SetStatus(ctx, p.ID, content.StatusInactive)
	require.NoError(t, err)
	_, err = f.posts.GetBySlug(ctx, "cached")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestMostLikedClampsLimit(t *testing.T) {
	mem := cache.NewMemory(time.Minute)
	f := setupFixture(t, content.WithCache(mem))
	ctx := context.Background()
	cat := f.category(t, "News")
	p, err := f.posts.Create(ctx, postInput("Popular", cat.ID))
	require.NoError(t, err)
	_, err = f.posts.SetStatus(ctx, p.ID, content.StatusActive)
	require.NoError(t, err)

	huge, err := f.posts.MostLiked(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, huge, 1)
	capped, err := f.posts.MostLiked(ctx, content.MaxMostLiked)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, huge[0].ID, capped[0].ID)
	assert.Equal(t, 1, mem.Len())
}

func TestSearchOnInactiveDataIsNotFound(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")
	for _, title := range []string{"One", "Two"} {
		p, err := f.posts.Create(ctx, postInput(title, cat.ID))
		require.NoError(t, err)
		_, err = f.posts.SetStatus(ctx, p.ID, content.StatusInactive)
		require.NoError(t, err)
	}

	posts, err := f.posts.Search(ctx, "")
	assert.ErrorIs(t, err, content.ErrNotFound)
	assert.Nil(t, posts)
}

func TestListByCategory(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Denim")
	f.category(t, "Empty")

	_, err := f.posts.ListByCategory(ctx, "nonexistent-slug", 1)
	assert.ErrorIs(t, err, content.ErrNotFound)
	_, err = f.posts.ListByCategory(ctx, "", 1)
	assert.ErrorIs(t, err, content.ErrNotFound)
	_, err = f.posts.ListByCategory(ctx, "empty", 1)
	assert.ErrorIs(t, err, content.ErrNotFound)

	for i := 0; i < 12; i++ {
		p, err := f.posts.Create(ctx, postInput("Denim "+string(rune('a'+i)), cat.ID))
		require.NoError(t, err)
		_, err = f.posts.SetStatus(ctx, p.ID, content.StatusActive)
		require.NoError(t, err)
	}

	page, err := f.posts.ListByCategory(ctx, "denim", 2)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, content.Pagination{CurrentPage: 2, TotalPages: 2, TotalPosts: 12}, page.Pagination)

	page, err = f.posts.ListByCategory(ctx, "denim", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Len(t, page.Posts, content.CategoryPageSize)
}

func TestLikeOncePerActor(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")
	p, err := f.posts.Create(ctx, postInput("Likeable", cat.ID))
	require.NoError(t, err)
	tok := f.token(t, "reader-1")

	require.NoError(t, f.posts.Like(ctx, tok, p.ID))
	err = f.posts.Like(ctx, tok, p.ID)
	assert.ErrorIs(t, err, content.ErrConflict)
	msg, _ := content.Message(err)
	assert.Equal(t, "You have already liked this post", msg)

	got, err := f.posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.LikeCount)
}

func TestLikeRejections(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")
	p, err := f.posts.Create(ctx, postInput("Likeable", cat.ID))
	require.NoError(t, err)

	var ve *content.ValidationError
	assert.True(t, errors.As(f.posts.Like(ctx, "", p.ID), &ve))
	assert.True(t, errors.As(f.posts.Like(ctx, f.token(t, "u"), ""), &ve))
	assert.ErrorIs(t, f.posts.Like(ctx, "garbage", p.ID), content.ErrInvalidActor)

	expired, err := f.verifier.Sign("u", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.ErrorIs(t, f.posts.Like(ctx, expired, p.ID), content.ErrInvalidActor)

	assert.ErrorIs(t, f.posts.Like(ctx, f.token(t, "u"), "missing"), content.ErrNotFound)
}

func TestUpdateReplacesCategoriesAndTags(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	a := f.category(t, "Alpha")
	b := f.category(t, "Beta")
	link := "https://shop.example.com"

	in := postInput("Original", a.ID, b.ID)
	in.Tags = []content.TagInput{{Name: "linen"}, {Name: "shop", HyperLink: &link}}
	p, err := f.posts.Create(ctx, in)
	require.NoError(t, err)
	_, err = f.posts.SetStatus(ctx, p.ID, content.StatusActive)
	require.NoError(t, err)

	upd := postInput("Renamed Post", b.ID)
	upd.ID = p.ID
	upd.Tags = []content.TagInput{{Name: "shop", HyperLink: &link}}
	updated, err := f.posts.Update(ctx, upd)
	require.NoError(t, err)
	assert.Equal(t, content.StatusActive, updated.Status)
	assert.Equal(t, "renamed-post", updated.Slug)

	got, err := f.posts.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, b.ID, got.Categories[0].ID)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, p.Tags[1].ID, got.Tags[0].ID)
}

func TestBlankTagLinkReusesTag(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")
	empty := "  "

	first := postInput("First Linen", cat.ID)
	first.Tags = []content.TagInput{{Name: "linen", HyperLink: &empty}, {Name: "linen"}}
	p1, err := f.posts.Create(ctx, first)
	require.NoError(t, err)
	require.Len(t, p1.Tags, 1)
	assert.Nil(t, p1.Tags[0].HyperLink)

	second := postInput("Second Linen", cat.ID)
	second.Tags = []content.TagInput{{Name: "linen"}}
	p2, err := f.posts.Create(ctx, second)
	require.NoError(t, err)
	require.Len(t, p2.Tags, 1)
	assert.Equal(t, p1.Tags[0].ID, p2.Tags[0].ID)

	tags, err := f.posts.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Nil(t, tags[0].HyperLink)
}

func TestUpdateRequiresExistingPost(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")

	in := postInput("Nothing", cat.ID)
	_, err := f.posts.Update(ctx, in)
	var ve *content.ValidationError
	assert.True(t, errors.As(err, &ve))

	in.ID = "missing"
	_, err = f.posts.Update(ctx, in)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestUpdateSlugCollision(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")
	_, err := f.posts.Create(ctx, postInput("Taken", cat.ID))
	require.NoError(t, err)
	p, err := f.posts.Create(ctx, postInput("Free", cat.ID))
	require.NoError(t, err)

	in := postInput("Taken", cat.ID)
	in.ID = p.ID
	_, err = f.posts.Update(ctx, in)
	assert.ErrorIs(t, err, content.ErrConflict)
}

func TestMostLikedLatestAndFeed(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")
	var ids []string
	for _, title := range []string{"First", "Second", "Third"} {
		p, err := f.posts.Create(ctx, postInput(title, cat.ID))
		require.NoError(t, err)
		_, err = f.posts.SetStatus(ctx, p.ID, content.StatusActive)
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	require.NoError(t, f.posts.Like(ctx, f.token(t, "u1"), ids[0]))

	liked, err := f.posts.MostLiked(ctx, 0)
	require.NoError(t, err)
	require.Len(t, liked, 3)
	assert.Equal(t, ids[0], liked[0].ID)
	assert.EqualValues(t, 1, liked[0].LikeCount)

	latest, err := f.posts.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, ids[2], latest[0].ID)

	feed, err := f.posts.Feed(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestDeletePost(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")
	p, err := f.posts.Create(ctx, postInput("Doomed", cat.ID))
	require.NoError(t, err)

	require.NoError(t, f.posts.Delete(ctx, p.ID))
	assert.ErrorIs(t, f.posts.Delete(ctx, p.ID), content.ErrNotFound)
	_, err = f.posts.Get(ctx, p.ID)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestBackfillOGImages(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	n, err := f.posts.BackfillOGImages(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCategoryService(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	c := f.category(t, "Men's Wear")
	_, err := f.categories.Create(ctx, content.CategoryInput{Name: "Men's  Wear"})
	assert.ErrorIs(t, err, content.ErrConflict)
	msg, _ := content.Message(err)
	assert.Equal(t, "Category is already exist!", msg)

	updated, err := f.categories.Update(ctx, content.CategoryInput{ID: c.ID, Name: "Women"})
	require.NoError(t, err)
	assert.Equal(t, "women", updated.Slug)

	_, err = f.categories.Get(ctx, "missing")
	assert.ErrorIs(t, err, content.ErrNotFound)

	var ve *content.ValidationError
	assert.True(t, errors.As(f.categories.Delete(ctx, ""), &ve))
	require.NoError(t, f.categories.Delete(ctx, c.ID))
}

func TestQuoteService(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Inspiration")

	var ve *content.ValidationError
	_, err := f.quotes.Create(ctx, content.QuoteInput{Text: " ", CategoryID: cat.ID})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Enter a valid quote", ve.Fields[0].Message)

	_, err = f.quotes.Create(ctx, content.QuoteInput{Text: "Style is a way to say who you are", CategoryID: "missing"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Select a valid category", ve.Fields[0].Message)

	empty := ""
	q, err := f.quotes.Create(ctx, content.QuoteInput{Text: "Style is a way to say who you are", CategoryID: cat.ID, HyperLink: &empty})
	require.NoError(t, err)
	assert.Nil(t, q.HyperLink)
	assert.Nil(t, q.ImageURL)

	link := "https://example.com"
	q, err = f.quotes.Update(ctx, content.QuoteInput{ID: q.ID, Text: "Updated", CategoryID: cat.ID, HyperLink: &link})
	require.NoError(t, err)
	require.NotNil(t, q.HyperLink)

	quotes, err := f.quotes.List(ctx)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Updated", quotes[0].Text)
	require.NotNil(t, quotes[0].Category)
	assert.Equal(t, "Inspiration", quotes[0].Category.Name)

	err = f.categories.Delete(ctx, cat.ID)
	assert.ErrorIs(t, err, content.ErrConflict)

	require.NoError(t, f.quotes.Delete(ctx, q.ID))
	assert.ErrorIs(t, f.quotes.Delete(ctx, q.ID), content.ErrNotFound)
}

func TestImageServiceFlagsUsage(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	cat := f.category(t, "News")

	used, err := f.images.Create(ctx, content.ImageInput{ImageURL: "https://cdn.example.com/used.jpg", Note: "hero"})
	require.NoError(t, err)
	_, err = f.images.Create(ctx, content.ImageInput{ImageURL: "https://cdn.example.com/free.jpg", Note: "spare"})
	require.NoError(t, err)

	in := postInput("Uses Image", cat.ID)
	in.Content = `<img src="https://cdn.example.com/used.jpg">`
	_, err = f.posts.Create(ctx, in)
	require.NoError(t, err)

	page, err := f.images.List(ctx, 0, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalImages)
	flags := map[string]bool{}
	for _, img := range page.Images {
		flags[img.ID] = img.IsUsed
	}
	assert.True(t, flags[used.ID])
	assert.Len(t, flags, 2)

	page, err = f.images.List(ctx, 0, "spare")
	require.NoError(t, err)
	require.Len(t, page.Images, 1)
	assert.False(t, page.Images[0].IsUsed)

	_, err = f.images.Create(ctx, content.ImageInput{})
	var ve *content.ValidationError
	assert.True(t, errors.As(err, &ve))
}
