// Package content holds the blog domain: posts, categories, tags, images,
// quotes and newsletter subscribers, and the services that operate on them.
package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a Post.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Valid reports whether s is a status a post may be moved to.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Post is a blog article. Slug is derived from Title and is unique.
type Post struct {
	ID                    string     `gorm:"primaryKey;size:36" json:"id"`
	Title                 string     `gorm:"not null" json:"title"`
	Slug                  string     `gorm:"uniqueIndex;not null" json:"slug"`
	Status                Status     `gorm:"index;not null;default:PENDING" json:"status"`
	UserID                string     `gorm:"index;not null" json:"userId"`
	ThumbnailImage        string     `json:"thumbnailImage"`
	ThumbnailImageAltText string     `json:"thumbnailImageAltText"`
	OGImage               *string    `gorm:"column:og_image" json:"ogImage"`
	Content               string     `gorm:"type:text" json:"content"`
	Categories            []Category `gorm:"many2many:post_categories" json:"categories"`
	Tags                  []Tag      `gorm:"many2many:post_tags" json:"tags"`
	Likes                 []Like     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	LikeCount             int64      `gorm:"-" json:"likeCount"`
	CreatedAt             time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// Category groups posts and quotes.
type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Posts     []Post    `gorm:"many2many:post_categories" json:"posts,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tag is a label with an optional outbound link.
type Tag struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	Name      string  `gorm:"not null" json:"name"`
	HyperLink *string `json:"hyperLink"`
}

// Like records that a user liked a post. A user likes a post at most once.
type Like struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PostID    string    `gorm:"uniqueIndex:idx_like_post_user;not null" json:"postId"`
	UserID    string    `gorm:"uniqueIndex:idx_like_post_user;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Image is an uploaded asset. IsUsed is computed on read.
type Image struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ImageURL  string    `gorm:"not null" json:"imageUrl"`
	AltText   string    `json:"altText"`
	Note      string    `json:"note"`
	IsUsed    bool      `gorm:"-" json:"isUsed"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// Quote is a short text attached to a category.
type Quote struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	HyperLink  *string   `json:"hyperLink"`
	ImageURL   *string   `json:"imageUrl"`
	CategoryID string    `gorm:"index;not null" json:"categoryId"`
	Category   *Category `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Subscriber is a newsletter subscription.
type Subscriber struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (Subscriber) TableName() string { return "newsletters" }

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (p *Post) BeforeCreate(*gorm.DB) error       { newID(&p.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error   { newID(&c.ID); return nil }
func (t *Tag) BeforeCreate(*gorm.DB) error        { newID(&t.ID); return nil }
func (l *Like) BeforeCreate(*gorm.DB) error       { newID(&l.ID); return nil }
func (i *Image) BeforeCreate(*gorm.DB) error      { newID(&i.ID); return nil }
func (q *Quote) BeforeCreate(*gorm.DB) error      { newID(&q.ID); return nil }
func (s *Subscriber) BeforeCreate(*gorm.DB) error { newID(&s.ID); return nil }

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{&Category{}, &Tag{}, &Post{}, &Like{}, &Image{}, &Quote{}, &Subscriber{}}
}
