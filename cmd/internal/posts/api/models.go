package postsapi

import (
	"time"

	"postboard/cmd/internal/posts"
)

type createPostRequest struct {
	Text *string `json:"text"`
}

type createPostResponse struct {
	PostID  int64  `json:"postID"`
	Message string `json:"message"`
}

type postResponse struct {
	PostID    int64     `json:"postID"`
	Text      string    `json:"text"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listPostsResponse struct {
	Posts  []postResponse `json:"posts"`
	Total  int            `json:"total"`
	Cached bool           `json:"cached"`
}

type deletePostResponse struct {
	Message string `json:"message"`
	PostID  int64  `json:"postID"`
}

func toPostResponse(p posts.Post) postResponse {
	return postResponse{
		PostID:    p.ID,
		Text:      p.Text,
		UserID:    p.OwnerID,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

func toListResponse(l posts.Listing) listPostsResponse {
	out := make([]postResponse, 0, len(l.Posts))
	for _, p := range l.Posts {
		out = append(out, toPostResponse(p))
	}
	return listPostsResponse{Posts: out, Total: l.Total, Cached: l.Cached}
}
