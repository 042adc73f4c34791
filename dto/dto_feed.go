package dto

type FeedPageResponse struct {
	PostIDs    []string `json:"postIds"`
	NextCursor *string  `json:"nextCursor,omitempty"` // absent on the last page
}
