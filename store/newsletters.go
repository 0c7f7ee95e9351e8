package store

import (
	"context"

	"github.com/eringen/blogapi/content"
)

func (s *Store) ListSubscribers(ctx context.Context) ([]content.Subscriber, error) {
	var subs []content.Subscriber
	err := s.db.WithContext(ctx).Select("id", "email", "created_at").Order("created_at DESC").Find(&subs).Error
	if err != nil {
		return nil, translateError(err)
	}
	return subs, nil
}

// CreateSubscriber inserts sub. The unique email index turns a repeat
// subscription into ErrConflict.
func (s *Store) CreateSubscriber(ctx context.Context, sub *content.Subscriber) error {
	return translateError(s.db.WithContext(ctx).Create(sub).Error)
}

func (s *Store) DeleteSubscriber(ctx context.Context, id string) error {
	return s.deleteByID(ctx, &content.Subscriber{}, id)
}
