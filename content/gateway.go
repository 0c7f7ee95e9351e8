package content

import (
	"context"
	"errors"
)

// ErrUnknownCategory is returned by a gateway when a referenced category id
// does not exist.
var ErrUnknownCategory = errors.New("unknown category")

// PostQuery filters and pages a post listing. Zero values mean "no filter".
type PostQuery struct {
	Title  string
	Status Status
	Offset int
	Limit  int
}

// PostGateway is the persistence contract the post service depends on.
// Implementations return ErrNotFound and ErrConflict (possibly wrapped) for
// missing rows and uniqueness violations.
type PostGateway interface {
	ListPosts(ctx context.Context, q PostQuery) ([]Post, int64, error)
	MostLikedPosts(ctx context.Context, limit int) ([]Post, error)
	GetPost(ctx context.Context, id string) (*Post, error)
	GetPostBySlug(ctx context.Context, slug string, status Status) (*Post, error)
	SearchPosts(ctx context.Context, query string) ([]Post, error)
	PostsByCategory(ctx context.Context, categoryID string, offset, limit int) ([]Post, int64, error)
	LatestPosts(ctx context.Context, limit int) ([]Post, error)
	CategoriesWithPosts(ctx context.Context) ([]Category, error)
	PostTags(ctx context.Context) ([]Tag, error)
	CreatePost(ctx context.Context, p *Post, tags []Tag, categoryIDs []string) error
	UpdatePost(ctx context.Context, p *Post, tags []Tag, categoryIDs []string) error
	SetPostStatus(ctx context.Context, id string, status Status) (*Post, error)
	CreateLike(ctx context.Context, l *Like) error
	DeletePost(ctx context.Context, id string) error
	FeedPosts(ctx context.Context, limit int) ([]Post, error)
	BackfillOGImages(ctx context.Context, baseURL string) (int64, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
}

type CategoryGateway interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) error
}

type ImageGateway interface {
	ListImages(ctx context.Context, note string, offset, limit int) ([]Image, int64, error)
	ImageInUse(ctx context.Context, url string) (bool, error)
	GetImage(ctx context.Context, id string) (*Image, error)
	CreateImage(ctx context.Context, img *Image) error
	UpdateImage(ctx context.Context, img *Image) error
	DeleteImage(ctx context.Context, id string) error
}

type QuoteGateway interface {
	ListQuotes(ctx context.Context) ([]Quote, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	CreateQuote(ctx context.Context, q *Quote) error
	UpdateQuote(ctx context.Context, q *Quote) error
	DeleteQuote(ctx context.Context, id string) error
}

type NewsletterGateway interface {
	ListSubscribers(ctx context.Context) ([]Subscriber, error)
	CreateSubscriber(ctx context.Context, s *Subscriber) error
	DeleteSubscriber(ctx context.Context, id string) error
}

// ActorVerifier resolves a bearer credential to the id of the user it was
// issued to.
type ActorVerifier interface {
	ActorID(token string) (string, error)
}
