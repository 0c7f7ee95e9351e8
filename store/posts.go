package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/eringen/blogapi/content"
)

type likeRow struct {
	PostID string
	N      int64
}

func (s *Store) ListPosts(ctx context.Context, q content.PostQuery) ([]content.Post, int64, error) {
	tx := s.db.WithContext(ctx).Model(&content.Post{})
	if q.Title != "" {
		tx = tx.Where("LOWER(posts.title) LIKE ?"+likeEscape, containsPattern(q.Title))
	}
	if q.Status != "" {
		tx = tx.Where("posts.status = ?", q.Status)
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var posts []content.Post
	find := tx.Order("posts.created_at DESC").Offset(q.Offset)
	if q.Limit > 0 {
		find = find.Limit(q.Limit)
	}
	if err := find.Preload("Categories").Find(&posts).Error; err != nil {
		return nil, 0, translateError(err)
	}
	if err := s.fillLikeCounts(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// MostLikedPosts ranks active posts by like count, newest first on ties.
// Each post carries only its first category.
func (s *Store) MostLikedPosts(ctx context.Context, limit int) ([]content.Post, error) {
	var ranked []likeRow
	err := s.db.WithContext(ctx).Table("posts").
		Select("posts.id AS post_id, COUNT(likes.id) AS n").
		Joins("LEFT JOIN likes ON likes.post_id = posts.id").
		Where("posts.status = ?", content.StatusActive).
		Group("posts.id, posts.created_at").
		Order("n DESC, posts.created_at DESC").
		Limit(limit).
		Scan(&ranked).Error
	if err != nil {
		return nil, translateError(err)
	}
	if len(ranked) == 0 {
		return nil, nil
	}
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.PostID
	}
	var found []content.Post
	if err := s.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("categories.created_at") }).
		Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, translateError(err)
	}
	byID := make(map[string]content.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	posts := make([]content.Post, 0, len(ranked))
	for _, r := range ranked {
		if p, ok := byID[r.PostID]; ok {
			p.LikeCount = r.N
			if len(p.Categories) > 1 {
				p.Categories = p.Categories[:1]
			}
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*content.Post, error) {
	var p content.Post
	err := s.db.WithContext(ctx).Preload("Categories").Preload("Tags").First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	if err := s.fillLikeCount(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string, status content.Status) (*content.Post, error) {
	var p content.Post
	err := s.db.WithContext(ctx).Preload("Categories").Preload("Tags").
		Where("slug = ? AND status = ?", slug, status).
		First(&p).Error
	if err != nil {
		return nil, translateError(err)
	}
	if err := s.fillLikeCount(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchPosts matches active posts whose title or any category slug
// contains query, ignoring case.
func (s *Store) SearchPosts(ctx context.Context, query string) ([]content.Post, error) {
	pattern := containsPattern(query)
	inCategory := s.db.Table("post_categories").
		Select("post_categories.post_id").
		Joins("JOIN categories ON categories.id = post_categories.category_id").
		Where("LOWER(categories.slug) LIKE ?"+likeEscape, pattern)

	var posts []content.Post
	err := s.db.WithContext(ctx).Model(&content.Post{}).
		Where("posts.status = ?", content.StatusActive).
		Where(s.db.Where("LOWER(posts.title) LIKE ?"+likeEscape, pattern).Or("posts.id IN (?)", inCategory)).
		Order("posts.created_at DESC").
		Preload("Categories").
		Find(&posts).Error
	if err != nil {
		return nil, translateError(err)
	}
	if err := s.fillLikeCounts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) PostsByCategory(ctx context.Context, categoryID string, offset, limit int) ([]content.Post, int64, error) {
	inCategory := s.db.Table("post_categories").Select("post_id").Where("category_id = ?", categoryID)
	tx := s.db.WithContext(ctx).Model(&content.Post{}).
		Where("posts.status = ?", content.StatusActive).
		Where("posts.id IN (?)", inCategory).
		Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var posts []content.Post
	err := tx.Order("posts.created_at DESC").Offset(offset).Limit(limit).
		Preload("Categories").Find(&posts).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	if err := s.fillLikeCounts(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *Store) LatestPosts(ctx context.Context, limit int) ([]content.Post, error) {
	return s.activePosts(ctx, limit, "Categories")
}

func (s *Store) FeedPosts(ctx context.Context, limit int) ([]content.Post, error) {
	return s.activePosts(ctx, limit, "Categories", "Tags")
}

func (s *Store) activePosts(ctx context.Context, limit int, preload ...string) ([]content.Post, error) {
	tx := s.db.WithContext(ctx).Where("status = ?", content.StatusActive).Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	for _, p := range preload {
		tx = tx.Preload(p)
	}
	var posts []content.Post
	if err := tx.Find(&posts).Error; err != nil {
		return nil, translateError(err)
	}
	return posts, nil
}

func (s *Store) CategoriesWithPosts(ctx context.Context) ([]content.Category, error) {
	var cats []content.Category
	err := s.db.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Where("posts.status = ?", content.StatusActive).Order("posts.created_at DESC")
		}).
		Order("name").
		Find(&cats).Error
	if err != nil {
		return nil, translateError(err)
	}
	return cats, nil
}

func (s *Store) PostTags(ctx context.Context) ([]content.Tag, error) {
	var tags []content.Tag
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Table("post_tags").Select("tag_id")).
		Order("name").
		Find(&tags).Error
	if err != nil {
		return nil, translateError(err)
	}
	return tags, nil
}

// CreatePost inserts p with its categories and reconciled tags in one
// transaction.
func (s *Store) CreatePost(ctx context.Context, p *content.Post, tags []content.Tag, categoryIDs []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cats, err := findCategories(tx, categoryIDs)
		if err != nil {
			return err
		}
		resolved, err := reconcileTags(tx, tags)
		if err != nil {
			return err
		}
		p.Categories = cats
		p.Tags = resolved
		return tx.Omit("Categories.*", "Tags.*").Create(p).Error
	})
	return translateError(err)
}

// UpdatePost rewrites p's fields and replaces its category and tag sets.
// Status and creation time are kept from the stored row.
func (s *Store) UpdatePost(ctx context.Context, p *content.Post, tags []content.Tag, categoryIDs []string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing content.Post
		if err := tx.First(&existing, "id = ?", p.ID).Error; err != nil {
			return err
		}
		cats, err := findCategories(tx, categoryIDs)
		if err != nil {
			return err
		}
		resolved, err := reconcileTags(tx, tags)
		if err != nil {
			return err
		}

		now := time.Now()
		err = tx.Model(&content.Post{ID: p.ID}).Updates(map[string]any{
			"title":                    p.Title,
			"slug":                     p.Slug,
			"user_id":                  p.UserID,
			"thumbnail_image":          p.ThumbnailImage,
			"thumbnail_image_alt_text": p.ThumbnailImageAltText,
			"og_image":                 p.OGImage,
			"content":                  p.Content,
			"updated_at":               now,
		}).Error
		if err != nil {
			return err
		}

		ref := &content.Post{ID: p.ID}
		if err := tx.Model(ref).Omit("Categories.*").Association("Categories").Replace(cats); err != nil {
			return err
		}
		if len(resolved) == 0 {
			if err := tx.Model(ref).Association("Tags").Clear(); err != nil {
				return err
			}
		} else if err := tx.Model(ref).Omit("Tags.*").Association("Tags").Replace(resolved); err != nil {
			return err
		}

		p.Status = existing.Status
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = now
		p.Categories = cats
		p.Tags = resolved
		return nil
	})
	return translateError(err)
}

func (s *Store) SetPostStatus(ctx context.Context, id string, status content.Status) (*content.Post, error) {
	res := s.db.WithContext(ctx).Model(&content.Post{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, content.ErrNotFound
	}
	return s.GetPost(ctx, id)
}

// CreateLike stores l. A missing post yields ErrNotFound and a repeated
// (post, user) pair yields ErrConflict from the unique index.
func (s *Store) CreateLike(ctx context.Context, l *content.Like) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&content.Post{}).Where("id = ?", l.PostID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return content.ErrNotFound
		}
		return tx.Create(l).Error
	})
	return translateError(err)
}

// DeletePost removes the post, its likes and its join rows. Tags and
// categories themselves are kept.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p content.Post
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Select("Categories", "Tags", "Likes").Delete(&p).Error
	})
	return translateError(err)
}

// BackfillOGImages sets og_image to baseURL + thumbnail on rows without one.
func (s *Store) BackfillOGImages(ctx context.Context, baseURL string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&content.Post{}).
		Where("og_image IS NULL").
		Update("og_image", gorm.Expr("? || thumbnail_image", baseURL))
	if res.Error != nil {
		return 0, translateError(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) fillLikeCount(ctx context.Context, p *content.Post) error {
	return translateError(s.db.WithContext(ctx).Model(&content.Like{}).
		Where("post_id = ?", p.ID).Count(&p.LikeCount).Error)
}

func (s *Store) fillLikeCounts(ctx context.Context, posts []content.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	var rows []likeRow
	err := s.db.WithContext(ctx).Model(&content.Like{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return translateError(err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.PostID] = r.N
	}
	for i := range posts {
		posts[i].LikeCount = counts[posts[i].ID]
	}
	return nil
}

func findCategories(tx *gorm.DB, ids []string) ([]content.Category, error) {
	if len(ids) == 0 {
		return nil, content.ErrUnknownCategory
	}
	var cats []content.Category
	if err := tx.Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, err
	}
	if len(cats) != len(ids) {
		return nil, content.ErrUnknownCategory
	}
	return cats, nil
}

// reconcileTags reuses stored tags that match by exact name and hyperlink
// and inserts the rest.
func reconcileTags(tx *gorm.DB, tags []content.Tag) ([]content.Tag, error) {
	out := make([]content.Tag, 0, len(tags))
	for _, t := range tags {
		q := tx.Where("name = ?", t.Name)
		if t.HyperLink == nil {
			q = q.Where("hyper_link IS NULL")
		} else {
			q = q.Where("hyper_link = ?", *t.HyperLink)
		}
		var existing []content.Tag
		if err := q.Limit(1).Find(&existing).Error; err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			out = append(out, existing[0])
			continue
		}
		tag := content.Tag{Name: t.Name, HyperLink: t.HyperLink}
		if err := tx.Create(&tag).Error; err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, nil
}
