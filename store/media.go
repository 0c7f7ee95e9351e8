package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/eringen/blogapi/content"
)

func (s *Store) ListImages(ctx context.Context, note string, offset, limit int) ([]content.Image, int64, error) {
	tx := s.db.WithContext(ctx).Model(&content.Image{})
	if note != "" {
		tx = tx.Where("LOWER(note) LIKE ?"+likeEscape, containsPattern(note))
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var images []content.Image
	if err := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&images).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return images, total, nil
}

// ImageInUse reports whether any post uses url as its thumbnail or
// mentions it in its body.
func (s *Store) ImageInUse(ctx context.Context, url string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&content.Post{}).
		Where("thumbnail_image = ? OR content LIKE ?"+likeEscape, url, "%"+escapeLike(url)+"%").
		Count(&n).Error
	if err != nil {
		return false, translateError(err)
	}
	return n > 0, nil
}

func (s *Store) GetImage(ctx context.Context, id string) (*content.Image, error) {
	var img content.Image
	if err := s.db.WithContext(ctx).First(&img, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &img, nil
}

func (s *Store) CreateImage(ctx context.Context, img *content.Image) error {
	return translateError(s.db.WithContext(ctx).Create(img).Error)
}

func (s *Store) UpdateImage(ctx context.Context, img *content.Image) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&content.Image{ID: img.ID}).Updates(map[string]any{
			"image_url": img.ImageURL,
			"alt_text":  img.AltText,
			"note":      img.Note,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return content.ErrNotFound
		}
		return tx.First(img, "id = ?", img.ID).Error
	})
	return translateError(err)
}

func (s *Store) DeleteImage(ctx context.Context, id string) error {
	return s.deleteByID(ctx, &content.Image{}, id)
}

func (s *Store) deleteByID(ctx context.Context, model any, id string) error {
	res := s.db.WithContext(ctx).Delete(model, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return content.ErrNotFound
	}
	return nil
}
