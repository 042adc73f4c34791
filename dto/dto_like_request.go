package dto

type LikeRequestDTO struct {
	PostID string `json:"postId"`
}

type LikeResponse struct {
	PostID    string `json:"postId"`
	IsLiked   bool   `json:"isLiked"`
	LikeCount int    `json:"likeCount"`
}
