package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CategoryInput is the document accepted by category create and update.
type CategoryInput struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"notblank" msg:"Category name is required"`
}

type CategoryService struct {
	gw CategoryGateway
	hooks
}

func NewCategoryService(gw CategoryGateway, opts ...Option) *CategoryService {
	return &CategoryService{gw: gw, hooks: newHooks(opts)}
}

func (s *CategoryService) List(ctx context.Context) ([]Category, error) {
	cats, err := s.gw.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return nonNil(cats), nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*Category, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("id", "ID is required")
	}
	c, err := s.gw.GetCategory(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("Category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// Create adds a category. A name whose slug is taken is rejected.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*Category, error) {
	c, err := buildCategory(in)
	if err != nil {
		return nil, err
	}
	if err := s.gw.CreateCategory(ctx, c); err != nil {
		return nil, categoryWriteError("create category", err)
	}
	s.purge(ctx)
	return c, nil
}

// Update renames a category and recomputes its slug.
func (s *CategoryService) Update(ctx context.Context, in CategoryInput) (*Category, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, invalid("id", "ID is required")
	}
	c, err := buildCategory(in)
	if err != nil {
		return nil, err
	}
	c.ID = in.ID
	if err := s.gw.UpdateCategory(ctx, c); err != nil {
		return nil, categoryWriteError("update category", err)
	}
	s.purge(ctx)
	return c, nil
}

// Delete removes a category. Categories still referenced by quotes cannot
// be deleted.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "ID is required")
	}
	err := s.gw.DeleteCategory(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return notFound("Category not found")
	case errors.Is(err, ErrConflict):
		return conflict("Category is still in use")
	case err != nil:
		return fmt.Errorf("delete category: %w", err)
	}
	s.purge(ctx)
	return nil
}

func buildCategory(in CategoryInput) (*Category, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	slug := Slugify(in.Name)
	if slug == "" {
		return nil, invalid("name", "Category name is required")
	}
	return &Category{Name: strings.TrimSpace(in.Name), Slug: slug}, nil
}

func categoryWriteError(op string, err error) error {
	switch {
	case errors.Is(err, ErrConflict):
		return conflict("Category is already exist!")
	case errors.Is(err, ErrNotFound):
		return notFound("Category not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}
