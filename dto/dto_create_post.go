package dto

// ===== Request =====
// CreatePostDTO carries the multipart fields of POST /posts; images arrive as
// file parts next to this payload.
type CreatePostDTO struct {
	PostText string `json:"postText" form:"postText"`
}

type UpdatePostDTO struct {
	PostText string `json:"postText"`
}

// ===== Success Response =====
type PostResponse struct {
	ID           string   `json:"id"           example:"66c6248b98c56c39f018e7d2"`
	UserID       string   `json:"userId"       example:"66c6248b98c56c39f018e7d2"`
	PostText     string   `json:"postText"     example:"hello feed"`
	ImageURLs    []string `json:"imageUrls,omitempty"`
	LikeCount    int      `json:"likeCount"    example:"0"`
	CommentCount int      `json:"commentCount" example:"0"`
	IsLiked      bool     `json:"isLiked"`
	CreatedAt    string   `json:"createdAt"    example:"2025-09-07T13:47:47Z"`
	UpdatedAt    string   `json:"updatedAt"    example:"2025-09-07T13:47:47Z"`
}

// ===== Error Response =====
type ErrorResponse struct {
	Message string `json:"message" example:"invalid body"`
}
