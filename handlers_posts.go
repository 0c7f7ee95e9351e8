package blogapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogapi/content"
)

func (a *App) handleListPosts(c echo.Context) error {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		return err
	}
	res, err := a.Posts.List(c.Request().Context(), page, c.QueryParam("searchQuery"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleMostLiked(c echo.Context) error {
	limit, err := queryInt(c, "limit", content.DefaultMostLiked)
	if err != nil {
		return err
	}
	posts, err := a.Posts.MostLiked(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleGetPost(c echo.Context) error {
	p, err := a.Posts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	ids := make([]string, len(p.Categories))
	for i, cat := range p.Categories {
		ids[i] = cat.ID
	}
	return c.JSON(http.StatusOK, postDetail{Post: p, Categories: ids})
}

func (a *App) handleCategoryWise(c echo.Context) error {
	cats, err := a.Posts.ByCategory(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

func (a *App) handleLatest(c echo.Context) error {
	posts, err := a.Posts.Latest(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postsResponse{Posts: posts})
}

func (a *App) handlePostsByCategory(c echo.Context) error {
	page := 1
	if v := c.Param("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badParam("page")
		}
		page = n
	}
	res, err := a.Posts.ListByCategory(c.Request().Context(), c.Param("slug"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handlePostBySlug(c echo.Context) error {
	p, err := a.Posts.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) handleSearch(c echo.Context) error {
	posts, err := a.Posts.Search(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleTags(c echo.Context) error {
	tags, err := a.Posts.Tags(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tagsResponse{Tags: tags})
}

func (a *App) handleCreatePost(c echo.Context) error {
	in, err := a.bindPost(c)
	if err != nil {
		return err
	}
	p, err := a.Posts.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (a *App) handleUpdatePost(c echo.Context) error {
	in, err := a.bindPost(c)
	if err != nil {
		return err
	}
	p, err := a.Posts.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// bindPost decodes a post document. The author defaults to the caller.
func (a *App) bindPost(c echo.Context) (content.PostInput, error) {
	var in content.PostInput
	if err := bind(c, &in); err != nil {
		return in, err
	}
	if in.UserID == "" {
		if claims := CurrentClaims(c); claims != nil {
			in.UserID = claims.UserID
		}
	}
	return in, nil
}

func (a *App) handleSetStatus(status content.Status) echo.HandlerFunc {
	msg := "Post has been activated"
	if status == content.StatusInactive {
		msg = "Post has been inactivated"
	}
	return func(c echo.Context) error {
		p, err := a.Posts.SetStatus(c.Request().Context(), c.Param("id"), status)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, statusResponse{Post: p, Message: msg})
	}
}

func (a *App) handleLikePost(c echo.Context) error {
	var req likeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := a.Posts.Like(c.Request().Context(), req.Token, req.PostID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "You have liked the post"})
}

func (a *App) handleDeletePost(c echo.Context) error {
	if err := a.Posts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Post deleted successfully"})
}
