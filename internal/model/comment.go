package model

import (
	"time"
)

// Comment represents a comment on a video. VideoID and AuthorID are weak
// references; a comment may outlive its video. AuthorName is a denormalized
// copy of the author's nickname at write time.
type Comment struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"videoId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	Likes      []string  `json:"likes"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToggleLike adds the user id to the likes set if absent, removes it if
// present. Applying it twice restores the original set.
func (c *Comment) ToggleLike(userID string) {
	if containsID(c.Likes, userID) {
		c.Likes = removeID(c.Likes, userID)
		return
	}
	c.Likes = append(c.Likes, userID)
}
