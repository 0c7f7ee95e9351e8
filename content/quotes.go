package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type QuoteInput struct {
	ID         string  `json:"id"`
	Text       string  `json:"text" validate:"notblank" msg:"Enter a valid quote"`
	CategoryID string  `json:"categoryId" validate:"notblank" msg:"Select a valid category"`
	HyperLink  *string `json:"hyperLink"`
	ImageURL   *string `json:"imageUrl"`
}

type QuoteService struct {
	gw QuoteGateway
	hooks
}

func NewQuoteService(gw QuoteGateway, opts ...Option) *QuoteService {
	return &QuoteService{gw: gw, hooks: newHooks(opts)}
}

func (s *QuoteService) List(ctx context.Context) ([]Quote, error) {
	quotes, err := s.gw.ListQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return nonNil(quotes), nil
}

func (s *QuoteService) Create(ctx context.Context, in QuoteInput) (*Quote, error) {
	q, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.gw.CreateQuote(ctx, q); err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}
	return q, nil
}

func (s *QuoteService) Update(ctx context.Context, in QuoteInput) (*Quote, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, invalid("id", "ID is required")
	}
	q, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	q.ID = in.ID
	err = s.gw.UpdateQuote(ctx, q)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("Quote not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update quote: %w", err)
	}
	return q, nil
}

func (s *QuoteService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "ID is required")
	}
	err := s.gw.DeleteQuote(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return notFound("Quote not found")
	}
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	return nil
}

// build validates in and resolves its category. Empty optional links are
// stored as NULL.
func (s *QuoteService) build(ctx context.Context, in QuoteInput) (*Quote, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	cat, err := s.gw.GetCategory(ctx, in.CategoryID)
	if errors.Is(err, ErrNotFound) {
		return nil, invalid("categoryId", "Select a valid category")
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &Quote{
		Text:       strings.TrimSpace(in.Text),
		HyperLink:  optional(in.HyperLink),
		ImageURL:   optional(in.ImageURL),
		CategoryID: cat.ID,
		Category:   cat,
	}, nil
}

func optional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
