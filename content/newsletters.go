package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type SubscribeInput struct {
	Email string `json:"email" validate:"required,email" msg:"Enter a valid email address"`
}

type NewsletterService struct {
	gw NewsletterGateway
	hooks
}

func NewNewsletterService(gw NewsletterGateway, opts ...Option) *NewsletterService {
	return &NewsletterService{gw: gw, hooks: newHooks(opts)}
}

// List returns subscribers newest first.
func (s *NewsletterService) List(ctx context.Context) ([]Subscriber, error) {
	subs, err := s.gw.ListSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return nonNil(subs), nil
}

// Subscribe adds email to the newsletter. The address is checked before the
// gateway is touched.
func (s *NewsletterService) Subscribe(ctx context.Context, in SubscribeInput) (*Subscriber, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := Validate(in); err != nil {
		return nil, err
	}
	sub := &Subscriber{Email: in.Email}
	err := s.gw.CreateSubscriber(ctx, sub)
	if errors.Is(err, ErrConflict) {
		return nil, conflict("Email already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	s.publish(ctx, SubjectNewsletterSubscribed, sub)
	return sub, nil
}

func (s *NewsletterService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "ID is required")
	}
	err := s.gw.DeleteSubscriber(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return notFound("Subscriber not found")
	}
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}
