package blogapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogapi/auth"
	"github.com/eringen/blogapi/content"
)

func (a *App) handleHealth(c echo.Context) error {
	if err := a.Store.Ping(); err != nil {
		c.Logger().Errorf("health: %v", err)
		return c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "unavailable"})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Posts.Feed(ctx, sitemapSize)
	if err != nil {
		return err
	}
	cats, err := a.Categories.List(ctx)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, cats)
}

// httpErrorHandler writes every error as {"message": ...}. Causes of 5xx
// responses are logged and never sent to the client.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, body := errorStatus(err)
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		c.Logger().Errorf("write error response: %v", err)
	}
}

func errorStatus(err error) (int, errorResponse) {
	var (
		ve *content.ValidationError
		he *echo.HTTPError
	)
	msg, ok := content.Message(err)
	if !ok {
		msg = err.Error()
	}
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorResponse{Message: msg, Errors: ve.Fields}
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound, errorResponse{Message: msg}
	case errors.Is(err, content.ErrConflict):
		return http.StatusBadRequest, errorResponse{Message: msg}
	case errors.Is(err, content.ErrInvalidActor):
		return http.StatusUnauthorized, errorResponse{Message: msg}
	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusForbidden, errorResponse{Message: "Access denied"}
	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, errorResponse{Message: "Token has expired"}
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusForbidden, errorResponse{Message: "Invalid token"}
	case errors.As(err, &he):
		if m, ok := he.Message.(string); ok {
			return he.Code, errorResponse{Message: m}
		}
		return he.Code, errorResponse{Message: http.StatusText(he.Code)}
	}
	return http.StatusInternalServerError, errorResponse{Message: "Something went wrong!"}
}

func (a *App) handleListCategories(c echo.Context) error {
	cats, err := a.Categories.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: cats})
}

func (a *App) handleGetCategory(c echo.Context) error {
	cat, err := a.Categories.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoryResponse{Category: cat})
}

func (a *App) handleCreateCategory(c echo.Context) error {
	var in content.CategoryInput
	if err := bind(c, &in); err != nil {
		return err
	}
	cat, err := a.Categories.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

func (a *App) handleUpdateCategory(c echo.Context) error {
	var in content.CategoryInput
	if err := bind(c, &in); err != nil {
		return err
	}
	cat, err := a.Categories.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

func (a *App) handleDeleteCategory(c echo.Context) error {
	if err := a.Categories.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Category deleted successfully"})
}

func (a *App) handleListSubscribers(c echo.Context) error {
	subs, err := a.Newsletters.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subs)
}

func (a *App) handleSubscribe(c echo.Context) error {
	var in content.SubscribeInput
	if err := bind(c, &in); err != nil {
		return err
	}
	sub, err := a.Newsletters.Subscribe(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sub)
}

func (a *App) handleDeleteSubscriber(c echo.Context) error {
	if err := a.Newsletters.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Newsletter deleted successfully"})
}

func (a *App) handleListQuotes(c echo.Context) error {
	quotes, err := a.Quotes.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quotesResponse{Quotes: quotes})
}

func (a *App) handleCreateQuote(c echo.Context) error {
	var in content.QuoteInput
	if err := bind(c, &in); err != nil {
		return err
	}
	q, err := a.Quotes.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quoteResponse{Quote: q})
}

func (a *App) handleUpdateQuote(c echo.Context) error {
	var in content.QuoteInput
	if err := bind(c, &in); err != nil {
		return err
	}
	q, err := a.Quotes.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quoteResponse{Quote: q})
}

func (a *App) handleDeleteQuote(c echo.Context) error {
	if err := a.Quotes.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Quote deleted successfully"})
}
