package blogapi

import "github.com/eringen/blogapi/content"

// errorResponse is the single error envelope of the API. Errors is only set
// for validation failures.
type errorResponse struct {
	Message string               `json:"message"`
	Errors  []content.FieldError `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// postDetail is the admin view of a post: categories are reduced to ids.
type postDetail struct {
	*content.Post
	Categories []string `json:"categories"`
}

type postsResponse struct {
	Posts []content.Post `json:"posts"`
}

type statusResponse struct {
	Post    *content.Post `json:"post"`
	Message string        `json:"message"`
}

type tagsResponse struct {
	Tags []content.Tag `json:"tags"`
}

type categoriesResponse struct {
	Categories []content.Category `json:"categories"`
}

type categoryResponse struct {
	Category *content.Category `json:"category"`
}

type imageResponse struct {
	Image *content.Image `json:"image"`
}

type quotesResponse struct {
	Quotes []content.Quote `json:"quotes"`
}

type quoteResponse struct {
	Quote *content.Quote `json:"quote"`
}

type likeRequest struct {
	Token  string `json:"token"`
	PostID string `json:"postId"`
}
