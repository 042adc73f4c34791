package dto

type CreateCommentDTO struct {
	Text     string `json:"text"`
	ParentID string `json:"parentId,omitempty"` // set when replying to a top-level comment
}

type CommentResponse struct {
	ID        string `json:"id"`
	PostID    string `json:"postId"`
	ParentID  string `json:"parentId,omitempty"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

type CommentPageResponse struct {
	Items      []CommentResponse `json:"items"`
	NextCursor *string           `json:"nextCursor,omitempty"`
}
