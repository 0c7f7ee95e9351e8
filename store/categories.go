package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/eringen/blogapi/content"
)

func (s *Store) ListCategories(ctx context.Context) ([]content.Category, error) {
	var cats []content.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&cats).Error; err != nil {
		return nil, translateError(err)
	}
	return cats, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*content.Category, error) {
	var c content.Category
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*content.Category, error) {
	var c content.Category
	if err := s.db.WithContext(ctx).First(&c, "slug = ?", slug).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *content.Category) error {
	return translateError(s.db.WithContext(ctx).Omit("Posts").Create(c).Error)
}

func (s *Store) UpdateCategory(ctx context.Context, c *content.Category) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&content.Category{ID: c.ID}).Updates(map[string]any{
			"name": c.Name,
			"slug": c.Slug,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return content.ErrNotFound
		}
		return tx.First(c, "id = ?", c.ID).Error
	})
	return translateError(err)
}

// DeleteCategory removes the category and its post associations. The
// quotes foreign key rejects the delete while quotes still reference it.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c content.Category
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Select("Posts").Delete(&c).Error
	})
	return translateError(err)
}
