package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eringen/blogapi/content"
)

func (s *Store) ListQuotes(ctx context.Context) ([]content.Quote, error) {
	var quotes []content.Quote
	if err := s.db.WithContext(ctx).Preload("Category").Order("created_at DESC").Find(&quotes).Error; err != nil {
		return nil, translateError(err)
	}
	return quotes, nil
}

func (s *Store) CreateQuote(ctx context.Context, q *content.Quote) error {
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Create(q).Error)
}

func (s *Store) UpdateQuote(ctx context.Context, q *content.Quote) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&content.Quote{ID: q.ID}).Updates(map[string]any{
			"text":        q.Text,
			"hyper_link":  q.HyperLink,
			"image_url":   q.ImageURL,
			"category_id": q.CategoryID,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return content.ErrNotFound
		}
		return tx.Preload("Category").First(q, "id = ?", q.ID).Error
	})
	return translateError(err)
}

func (s *Store) DeleteQuote(ctx context.Context, id string) error {
	return s.deleteByID(ctx, &content.Quote{}, id)
}
