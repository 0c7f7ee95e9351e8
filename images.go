package blogapi

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/blogapi/content"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// processedImage is an upload after scaling and re-encoding.
type processedImage struct {
	Filename string
	Width    int
	Height   int
	Data     []byte
}

// processImage decodes an image from src, resizes it to maxImageWidth when
// wider, and encodes it as JPEG.
func processImage(src io.Reader, originalName string) (processedImage, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return processedImage{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return processedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return processedImage{
		Filename: slugifyFilename(originalName) + ".jpg",
		Width:    w,
		Height:   h,
		Data:     buf.Bytes(),
	}, nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	s := content.Slugify(strings.TrimSuffix(name, ext))
	if s == "" {
		return "image"
	}
	return s
}

// uniqueFilename appends a counter until name is free in dir.
func uniqueFilename(dir, name string) string {
	base := strings.TrimSuffix(name, ".jpg")
	candidate := name
	for counter := 2; ; counter++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); err != nil {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, err := processImage(src, file.Filename)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid image")
	}

	dir := a.Config.UploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	img.Filename = uniqueFilename(dir, img.Filename)
	path := filepath.Join(dir, img.Filename)
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	saved, err := a.Images.Create(c.Request().Context(), content.ImageInput{
		ImageURL: BuildURL(a.Config.URL, "uploads", img.Filename),
		AltText:  c.FormValue("altText"),
		Note:     c.FormValue("note"),
	})
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}

func (a *App) handleListImages(c echo.Context) error {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		return err
	}
	res, err := a.Images.List(c.Request().Context(), page, c.QueryParam("searchQuery"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleGetImage(c echo.Context) error {
	img, err := a.Images.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, imageResponse{Image: img})
}

func (a *App) handleCreateImage(c echo.Context) error {
	var in content.ImageInput
	if err := bind(c, &in); err != nil {
		return err
	}
	img, err := a.Images.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, img)
}

func (a *App) handleUpdateImage(c echo.Context) error {
	var in content.ImageInput
	if err := bind(c, &in); err != nil {
		return err
	}
	img, err := a.Images.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, img)
}

func (a *App) handleDeleteImage(c echo.Context) error {
	if err := a.Images.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Image deleted successfully"})
}
