package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	PostPageSize         = 9
	CategoryPageSize     = 10
	DefaultMostLiked     = 6
	MaxMostLiked         = 50
	LatestPostsLimit     = 9
	titleRequiredMessage = "Title is required and cannot be empty"
)

// TagInput is a tag as submitted with a post.
type TagInput struct {
	Name      string  `json:"name" validate:"notblank" msg:"Tag name cannot be empty"`
	HyperLink *string `json:"hyperLink"`
}

// PostInput is the full document accepted by create and update.
type PostInput struct {
	ID                    string     `json:"id"`
	Title                 string     `json:"title" validate:"notblank" msg:"Title is required and cannot be empty"`
	UserID                string     `json:"userId" validate:"notblank" msg:"User ID is required. Please log in again to ensure your session is active"`
	ThumbnailImage        string     `json:"thumbnailImage" validate:"notblank" msg:"Thumbnail image is required."`
	ThumbnailImageAltText string     `json:"thumbnailImageAltText"`
	Content               string     `json:"content" validate:"notblank" msg:"Blog content cannot be empty"`
	Categories            []string   `json:"categories" validate:"min=1,dive,notblank" msg:"At least one category is required for the post."`
	Tags                  []TagInput `json:"tags" validate:"dive"`
}

// PostPage is one page of the admin post listing.
type PostPage struct {
	Posts      []Post `json:"posts"`
	TotalPosts int64  `json:"totalPosts"`
}

// Pagination describes the position of a CategoryPage.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalPosts  int64 `json:"totalPosts"`
}

// CategoryPage is one page of active posts in a category.
type CategoryPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// PostService implements the post lifecycle: creation in PENDING, full
// document updates, explicit activation, likes and the public read views.
type PostService struct {
	gw           PostGateway
	verifier     ActorVerifier
	imageBaseURL string
	hooks
}

// NewPostService returns a PostService. imageBaseURL prefixes the thumbnail
// file name to build the og:image URL.
func NewPostService(gw PostGateway, verifier ActorVerifier, imageBaseURL string, opts ...Option) *PostService {
	return &PostService{
		gw:           gw,
		verifier:     verifier,
		imageBaseURL: imageBaseURL,
		hooks:        newHooks(opts),
	}
}

// List returns page (0-based) of all posts, newest first, optionally
// filtered by a title substring.
func (s *PostService) List(ctx context.Context, page int, query string) (PostPage, error) {
	if page < 0 {
		page = 0
	}
	posts, total, err := s.gw.ListPosts(ctx, PostQuery{
		Title:  strings.TrimSpace(query),
		Offset: page * PostPageSize,
		Limit:  PostPageSize,
	})
	if err != nil {
		return PostPage{}, fmt.Errorf("list posts: %w", err)
	}
	return PostPage{Posts: nonNil(posts), TotalPosts: total}, nil
}

// MostLiked returns the active posts with the most likes. Ties go to the
// newer post. The limit is clamped to MaxMostLiked.
func (s *PostService) MostLiked(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = DefaultMostLiked
	}
	limit = min(limit, MaxMostLiked)
	key := fmt.Sprintf("posts:most-liked:%d", limit)
	posts, err := cached(ctx, s.hooks, key, func() ([]Post, error) {
		return s.gw.MostLikedPosts(ctx, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("most liked posts: %w", err)
	}
	return nonNil(posts), nil
}

// Get returns a post of any status with its categories and tags.
func (s *PostService) Get(ctx context.Context, id string) (*Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("id", "Post ID is required")
	}
	p, err := s.gw.GetPost(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// GetBySlug returns an active post. Pending and inactive posts are reported
// as not found.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	p, err := cached(ctx, s.hooks, "post:slug:"+slug, func() (*Post, error) {
		return s.gw.GetPostBySlug(ctx, slug, StatusActive)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return p, nil
}

// Search matches active posts by title or category slug. An empty result is
// reported as not found.
func (s *PostService) Search(ctx context.Context, query string) ([]Post, error) {
	posts, err := s.gw.SearchPosts(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	if len(posts) == 0 {
		return nil, notFound("No posts found")
	}
	return posts, nil
}

// ListByCategory returns page (1-based) of the active posts in the category
// with the given slug.
func (s *PostService) ListByCategory(ctx context.Context, slug string, page int) (CategoryPage, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return CategoryPage{}, notFound("Category not found")
	}
	if page < 1 {
		page = 1
	}
	cat, err := s.gw.GetCategoryBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return CategoryPage{}, notFound("Category not found")
	}
	if err != nil {
		return CategoryPage{}, fmt.Errorf("get category: %w", err)
	}
	posts, total, err := s.gw.PostsByCategory(ctx, cat.ID, (page-1)*CategoryPageSize, CategoryPageSize)
	if err != nil {
		return CategoryPage{}, fmt.Errorf("posts by category: %w", err)
	}
	if len(posts) == 0 {
		return CategoryPage{}, notFound("No posts found for this category")
	}
	return CategoryPage{
		Posts: posts,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  int((total + CategoryPageSize - 1) / CategoryPageSize),
			TotalPosts:  total,
		},
	}, nil
}

// Latest returns the newest active posts.
func (s *PostService) Latest(ctx context.Context) ([]Post, error) {
	posts, err := cached(ctx, s.hooks, "posts:latest", func() ([]Post, error) {
		return s.gw.LatestPosts(ctx, LatestPostsLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("latest posts: %w", err)
	}
	return nonNil(posts), nil
}

// ByCategory returns every category with its active posts.
func (s *PostService) ByCategory(ctx context.Context) ([]Category, error) {
	cats, err := s.gw.CategoriesWithPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("category-wise posts: %w", err)
	}
	if cats == nil {
		cats = []Category{}
	}
	return cats, nil
}

// Tags returns every tag attached to a post.
func (s *PostService) Tags(ctx context.Context) ([]Tag, error) {
	tags, err := s.gw.PostTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("post tags: %w", err)
	}
	if tags == nil {
		tags = []Tag{}
	}
	return tags, nil
}

// Create stores a new PENDING post. A title whose slug is already taken is
// rejected; it is never renamed.
func (s *PostService) Create(ctx context.Context, in PostInput) (*Post, error) {
	p, err := s.build(in)
	if err != nil {
		return nil, err
	}
	p.Status = StatusPending
	if err := s.gw.CreatePost(ctx, p, in.tags(), in.categoryIDs()); err != nil {
		return nil, s.writeError("create post", err)
	}
	s.purge(ctx)
	s.publish(ctx, SubjectPostCreated, p)
	return p, nil
}

// Update replaces a post's fields and its full category and tag sets. The
// status is left untouched.
func (s *PostService) Update(ctx context.Context, in PostInput) (*Post, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, invalid("id", "Post ID is required")
	}
	p, err := s.build(in)
	if err != nil {
		return nil, err
	}
	p.ID = in.ID
	if err := s.gw.UpdatePost(ctx, p, in.tags(), in.categoryIDs()); err != nil {
		return nil, s.writeError("update post", err)
	}
	s.purge(ctx)
	s.publish(ctx, SubjectPostUpdated, p)
	return p, nil
}

// SetStatus activates or deactivates a post.
func (s *PostService) SetStatus(ctx context.Context, id string, status Status) (*Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("id", "Post ID is required")
	}
	if !status.Valid() {
		return nil, invalid("status", "Status must be ACTIVE or INACTIVE")
	}
	p, err := s.gw.SetPostStatus(ctx, id, status)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("Post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("set post status: %w", err)
	}
	s.purge(ctx)
	s.publish(ctx, SubjectPostStatus, statusEvent{PostID: p.ID, Status: p.Status})
	return p, nil
}

// Like records that the holder of token likes the post.
func (s *PostService) Like(ctx context.Context, token, postID string) error {
	if strings.TrimSpace(token) == "" {
		return invalid("token", "Please login first")
	}
	if strings.TrimSpace(postID) == "" {
		return invalid("postId", "Post data is required")
	}
	userID, err := s.verifier.ActorID(token)
	if err != nil {
		return &Error{Kind: ErrInvalidActor, Message: "Invalid or expired token. Please login again"}
	}
	err = s.gw.CreateLike(ctx, &Like{PostID: postID, UserID: userID})
	switch {
	case errors.Is(err, ErrNotFound):
		return notFound("Post not found")
	case errors.Is(err, ErrConflict):
		return conflict("You have already liked this post")
	case err != nil:
		return fmt.Errorf("like post: %w", err)
	}
	s.purge(ctx)
	s.publish(ctx, SubjectPostLiked, likeEvent{PostID: postID, UserID: userID})
	return nil
}

// Delete removes a post together with its likes and associations.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "Post ID is required")
	}
	err := s.gw.DeletePost(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return notFound("Post not found")
	}
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.purge(ctx)
	s.publish(ctx, SubjectPostDeleted, deleteEvent{PostID: id})
	return nil
}

// Feed returns the newest active posts with categories and tags.
func (s *PostService) Feed(ctx context.Context, limit int) ([]Post, error) {
	posts, err := s.gw.FeedPosts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("feed posts: %w", err)
	}
	return nonNil(posts), nil
}

// BackfillOGImages sets the og:image of every post that has none.
func (s *PostService) BackfillOGImages(ctx context.Context) (int64, error) {
	n, err := s.gw.BackfillOGImages(ctx, s.imageBaseURL)
	if err != nil {
		return 0, fmt.Errorf("backfill og images: %w", err)
	}
	if n > 0 {
		s.purge(ctx)
	}
	return n, nil
}

// OGImage returns the og:image URL for a thumbnail file name.
func (s *PostService) OGImage(thumbnail string) string {
	return s.imageBaseURL + thumbnail
}

func (s *PostService) build(in PostInput) (*Post, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	slug := Slugify(in.Title)
	if slug == "" {
		return nil, invalid("title", titleRequiredMessage)
	}
	og := s.OGImage(in.ThumbnailImage)
	return &Post{
		Title:                 strings.TrimSpace(in.Title),
		Slug:                  slug,
		UserID:                in.UserID,
		ThumbnailImage:        in.ThumbnailImage,
		ThumbnailImageAltText: in.ThumbnailImageAltText,
		OGImage:               &og,
		Content:               in.Content,
	}, nil
}

func (s *PostService) writeError(op string, err error) error {
	switch {
	case errors.Is(err, ErrConflict):
		return conflict("Title already exists!")
	case errors.Is(err, ErrUnknownCategory):
		return invalid("categories", "Select a valid category")
	case errors.Is(err, ErrNotFound):
		return notFound("Post not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// tags returns the submitted tags with duplicates removed.
func (in PostInput) tags() []Tag {
	seen := make(map[string]bool)
	var out []Tag
	for _, t := range in.Tags {
		name := strings.TrimSpace(t.Name)
		link := optional(t.HyperLink)
		key := name + "\x00"
		if link != nil {
			key += "\x01" + *link
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Tag{Name: name, HyperLink: link})
	}
	return out
}

func (in PostInput) categoryIDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range in.Categories {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

type statusEvent struct {
	PostID string `json:"postId"`
	Status Status `json:"status"`
}

type likeEvent struct {
	PostID string `json:"postId"`
	UserID string `json:"userId"`
}

type deleteEvent struct {
	PostID string `json:"postId"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
