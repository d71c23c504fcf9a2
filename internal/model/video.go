package model

import (
	"time"
)

// VoteAction is a viewer's vote on a video
type VoteAction string

const (
	VoteLike    VoteAction = "like"
	VoteDislike VoteAction = "dislike"
	VoteNone    VoteAction = "none"
)

// Valid reports whether the action is one of like, dislike or none
func (a VoteAction) Valid() bool {
	switch a {
	case VoteLike, VoteDislike, VoteNone:
		return true
	default:
		return false
	}
}

// Video represents an uploaded video with its engagement state.
// AuthorName is a denormalized copy of the author's nickname; the operation
// layer rewrites it when the author renames. Likes and Dislikes hold user ids
// and are kept disjoint: a user id appears in at most one of the two.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	IsShort     bool      `json:"isShort"`
	Views       int64     `json:"views"`
	Likes       []string  `json:"likes"`
	Dislikes    []string  `json:"dislikes"`
	MediaRef    string    `json:"mediaRef"`
	BlobHandle  string    `json:"blobHandle,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ApplyVote clears the user's previous vote from both sets and records the
// new one. VoteNone leaves the user with no vote; repeating an action is
// idempotent.
func (v *Video) ApplyVote(userID string, action VoteAction) {
	v.Likes = removeID(v.Likes, userID)
	v.Dislikes = removeID(v.Dislikes, userID)
	switch action {
	case VoteLike:
		v.Likes = append(v.Likes, userID)
	case VoteDislike:
		v.Dislikes = append(v.Dislikes, userID)
	}
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
