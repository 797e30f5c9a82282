package dto

type CreateFeedPostRequest struct {
	Content string `json:"content"`
}
