package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const ImagePageSize = 16

type ImageInput struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl" validate:"notblank" msg:"Image URL is required"`
	AltText  string `json:"altText"`
	Note     string `json:"note"`
}

type ImagePage struct {
	Images      []Image `json:"images"`
	TotalImages int64   `json:"totalImages"`
}

type ImageService struct {
	gw ImageGateway
	hooks
}

func NewImageService(gw ImageGateway, opts ...Option) *ImageService {
	return &ImageService{gw: gw, hooks: newHooks(opts)}
}

// List returns page (0-based) of images, newest first, filtered by a note
// substring. Each image is flagged as used when a post references its URL
// as thumbnail or in its body; this costs one query per image.
func (s *ImageService) List(ctx context.Context, page int, query string) (ImagePage, error) {
	if page < 0 {
		page = 0
	}
	images, total, err := s.gw.ListImages(ctx, strings.TrimSpace(query), page*ImagePageSize, ImagePageSize)
	if err != nil {
		return ImagePage{}, fmt.Errorf("list images: %w", err)
	}
	for i := range images {
		used, err := s.gw.ImageInUse(ctx, images[i].ImageURL)
		if err != nil {
			return ImagePage{}, fmt.Errorf("image usage: %w", err)
		}
		images[i].IsUsed = used
	}
	return ImagePage{Images: nonNil(images), TotalImages: total}, nil
}

func (s *ImageService) Get(ctx context.Context, id string) (*Image, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("id", "ID is required")
	}
	img, err := s.gw.GetImage(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("Image not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

func (s *ImageService) Create(ctx context.Context, in ImageInput) (*Image, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	img := &Image{ImageURL: strings.TrimSpace(in.ImageURL), AltText: in.AltText, Note: in.Note}
	if err := s.gw.CreateImage(ctx, img); err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	return img, nil
}

func (s *ImageService) Update(ctx context.Context, in ImageInput) (*Image, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, invalid("id", "ID is required")
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	img := &Image{ID: in.ID, ImageURL: strings.TrimSpace(in.ImageURL), AltText: in.AltText, Note: in.Note}
	err := s.gw.UpdateImage(ctx, img)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("Image not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update image: %w", err)
	}
	return img, nil
}

func (s *ImageService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "ID is required")
	}
	err := s.gw.DeleteImage(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return notFound("Image not found")
	}
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
