// Package service is the operation layer: each exported method is one
// complete request cycle composing the record store and the blob backend,
// applying exactly one load→mutate→save cycle against the snapshot.
package service

import (
	"context"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/user/tootube/internal/blob"
	"github.com/user/tootube/internal/model"
	"github.com/user/tootube/internal/store"
)

// Service composes the record store and the blob backend.
type Service struct {
	store *store.Store
	blobs blob.Backend
}

// New creates the operation layer.
func New(st *store.Store, blobs blob.Backend) *Service {
	return &Service{store: st, blobs: blobs}
}

func newID(prefix string) string {
	return prefix + uuid.NewString()
}

// Snapshot returns the full four-collection document.
func (s *Service) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	var snap *model.Snapshot
	err := s.store.View(ctx, func(cur *model.Snapshot) error {
		snap = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// UploadRequest carries a decoded video upload.
type UploadRequest struct {
	Title       string
	Description string
	AuthorID    string
	AuthorName  string
	IsShort     bool
	Filename    string
	Data        []byte
}

// CreateVideo stores the uploaded bytes in the blob backend, then appends a
// video record pointing at them. Returns the new video id.
func (s *Service) CreateVideo(ctx context.Context, req UploadRequest) (string, error) {
	var missing []string
	if len(req.Data) == 0 {
		missing = append(missing, "file")
	}
	if req.Title == "" {
		missing = append(missing, "title")
	}
	if req.AuthorID == "" {
		missing = append(missing, "userId")
	}
	if len(missing) > 0 {
		return "", &ValidationError{Fields: missing}
	}

	authorName := req.AuthorName
	if authorName == "" {
		authorName = "User"
	}

	id := newID("v")
	ext := path.Ext(req.Filename)
	if ext == "" {
		ext = ".mp4"
	}

	ref, handle, err := s.blobs.Store(ctx, req.Data, id+ext)
	if err != nil {
		return "", err
	}

	err = s.store.Update(ctx, func(snap *model.Snapshot) error {
		snap.Videos = append(snap.Videos, &model.Video{
			ID:          id,
			Title:       req.Title,
			Description: req.Description,
			AuthorID:    req.AuthorID,
			AuthorName:  authorName,
			IsShort:     req.IsShort,
			Views:       0,
			Likes:       []string{},
			Dislikes:    []string{},
			MediaRef:    ref,
			BlobHandle:  handle,
			CreatedAt:   time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Info().Str("video", id).Str("author", req.AuthorID).Msg("Video uploaded")
	return id, nil
}

// Register creates a user. Fails with ErrDuplicateNickname when the nickname
// is already taken (exact, case-sensitive match).
func (s *Service) Register(ctx context.Context, nickname, password string) (*model.User, error) {
	var user *model.User
	err := s.store.Update(ctx, func(snap *model.Snapshot) error {
		if snap.FindUserByNickname(nickname) != nil {
			return ErrDuplicateNickname
		}
		user = &model.User{
			ID:              newID("u"),
			Nickname:        nickname,
			Password:        password,
			SubscriberCount: 0,
			Avatar:          nil,
			CreatedAt:       time.Now().UTC(),
		}
		snap.Users = append(snap.Users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("user", user.ID).Msg("User registered")
	return user, nil
}

// Login succeeds only on an exact nickname+password match.
func (s *Service) Login(ctx context.Context, nickname, password string) (*model.User, error) {
	var user *model.User
	err := s.store.View(ctx, func(snap *model.Snapshot) error {
		u := snap.FindUserByNickname(nickname)
		if u == nil || u.Password != password {
			return ErrInvalidCredentials
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetVote records the user's vote on a video. The previous vote, if any, is
// cleared first, so the user always ends up in exactly one of {liking,
// disliking, neutral}. Fails with ErrNotFound for an unknown video.
func (s *Service) SetVote(ctx context.Context, videoID, userID string, action model.VoteAction) error {
	if !action.Valid() {
		return &ValidationError{Fields: []string{"action"}}
	}
	return s.store.Update(ctx, func(snap *model.Snapshot) error {
		video := snap.FindVideo(videoID)
		if video == nil {
			return ErrNotFound
		}
		video.ApplyVote(userID, action)
		return nil
	})
}

// IncrementView bumps the video's view counter. An unknown video is a no-op,
// not an error: the video may have been deleted between page load and play.
func (s *Service) IncrementView(ctx context.Context, videoID string) error {
	return s.store.Update(ctx, func(snap *model.Snapshot) error {
		if video := snap.FindVideo(videoID); video != nil {
			video.Views++
		}
		return nil
	})
}

// AddComment appends a comment. The video id is not checked for existence —
// a comment racing a delete becomes an orphan, which is accepted.
func (s *Service) AddComment(ctx context.Context, videoID, authorID, authorName, text string) error {
	return s.store.Update(ctx, func(snap *model.Snapshot) error {
		snap.Comments = append(snap.Comments, &model.Comment{
			ID:         newID("c"),
			VideoID:    videoID,
			AuthorID:   authorID,
			AuthorName: authorName,
			Text:       text,
			Likes:      []string{},
			CreatedAt:  time.Now().UTC(),
		})
		return nil
	})
}

// ToggleCommentLike flips the user's membership in the comment's likes set.
// An unknown comment is a no-op.
func (s *Service) ToggleCommentLike(ctx context.Context, commentID, userID string) error {
	return s.store.Update(ctx, func(snap *model.Snapshot) error {
		if comment := snap.FindComment(commentID); comment != nil {
			comment.ToggleLike(userID)
		}
		return nil
	})
}

// ToggleSubscription creates or removes the (subscriber, channel)
// subscription and adjusts the channel's subscriber counter in the same
// snapshot, flooring it at zero. The counter is maintained incrementally,
// never recomputed by counting.
func (s *Service) ToggleSubscription(ctx context.Context, subscriberID, channelID string) error {
	return s.store.Update(ctx, func(snap *model.Snapshot) error {
		channel := snap.FindUser(channelID)
		if idx := snap.FindSubscription(subscriberID, channelID); idx >= 0 {
			snap.Subscriptions = append(snap.Subscriptions[:idx], snap.Subscriptions[idx+1:]...)
			if channel != nil && channel.SubscriberCount > 0 {
				channel.SubscriberCount--
			}
			return nil
		}
		snap.Subscriptions = append(snap.Subscriptions, &model.Subscription{
			ID:           newID("s"),
			SubscriberID: subscriberID,
			ChannelID:    channelID,
		})
		if channel != nil {
			channel.SubscriberCount++
		}
		return nil
	})
}

// DeleteVideo removes the video and every comment referencing it, then asks
// the blob backend to drop the media. Blob deletion is best-effort: a backend
// failure is logged and never blocks removal of the authoritative record.
func (s *Service) DeleteVideo(ctx context.Context, videoID string) error {
	var handle string
	err := s.store.Update(ctx, func(snap *model.Snapshot) error {
		if video := snap.FindVideo(videoID); video != nil {
			handle = video.BlobHandle
		}
		snap.Videos = filterVideos(snap.Videos, func(v *model.Video) bool { return v.ID != videoID })
		snap.Comments = filterComments(snap.Comments, func(c *model.Comment) bool { return c.VideoID != videoID })
		return nil
	})
	if err != nil {
		return err
	}
	s.deleteBlob(ctx, handle, videoID)
	return nil
}

// DeleteUser cascades across all four collections: the user's videos (each
// with its media blob and its comments), every comment the user authored,
// every subscription the user participates in, and the user record itself.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	var handles []string
	err := s.store.Update(ctx, func(snap *model.Snapshot) error {
		deleted := make(map[string]bool)
		for _, v := range snap.Videos {
			if v.AuthorID == userID {
				deleted[v.ID] = true
				if v.BlobHandle != "" {
					handles = append(handles, v.BlobHandle)
				}
			}
		}
		snap.Videos = filterVideos(snap.Videos, func(v *model.Video) bool {
			return v.AuthorID != userID
		})
		snap.Comments = filterComments(snap.Comments, func(c *model.Comment) bool {
			return c.AuthorID != userID && !deleted[c.VideoID]
		})
		filtered := snap.Subscriptions[:0]
		for _, sub := range snap.Subscriptions {
			if sub.SubscriberID != userID && sub.ChannelID != userID {
				filtered = append(filtered, sub)
			}
		}
		snap.Subscriptions = filtered
		users := snap.Users[:0]
		for _, u := range snap.Users {
			if u.ID != userID {
				users = append(users, u)
			}
		}
		snap.Users = users
		return nil
	})
	if err != nil {
		return err
	}
	for _, h := range handles {
		s.deleteBlob(ctx, h, userID)
	}
	log.Info().Str("user", userID).Msg("User deleted")
	return nil
}

// UpdateUserRequest carries the optional user edits. Empty Nickname and
// Password mean "leave unchanged"; Avatar is applied only when SetAvatar is
// true, and a nil Avatar with SetAvatar clears it.
type UpdateUserRequest struct {
	UserID    string
	Nickname  string
	Password  string
	Avatar    *string
	SetAvatar bool
}

// UpdateUser edits the user in place. A rename is subject to the same
// duplicate-nickname rule as registration (excluding the user's own record)
// and rewrites the denormalized author name on every video and comment the
// user authored, within the same persisted snapshot.
func (s *Service) UpdateUser(ctx context.Context, req UpdateUserRequest) (*model.User, error) {
	var user *model.User
	err := s.store.Update(ctx, func(snap *model.Snapshot) error {
		user = snap.FindUser(req.UserID)
		if user == nil {
			return ErrNotFound
		}
		if req.Nickname != "" {
			if other := snap.FindUserByNickname(req.Nickname); other != nil && other.ID != req.UserID {
				return ErrDuplicateNickname
			}
			for _, v := range snap.Videos {
				if v.AuthorID == req.UserID {
					v.AuthorName = req.Nickname
				}
			}
			for _, c := range snap.Comments {
				if c.AuthorID == req.UserID {
					c.AuthorName = req.Nickname
				}
			}
			user.Nickname = req.Nickname
		}
		if req.Password != "" {
			user.Password = req.Password
		}
		if req.SetAvatar {
			user.Avatar = req.Avatar
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// deleteBlob is the best-effort half of a cascade.
func (s *Service) deleteBlob(ctx context.Context, handle, owner string) {
	if handle == "" {
		return
	}
	if err := s.blobs.Delete(ctx, handle); err != nil {
		log.Warn().Err(err).Str("handle", handle).Str("owner", owner).Msg("Failed to delete media blob")
	}
}

func filterVideos(in []*model.Video, keep func(*model.Video) bool) []*model.Video {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterComments(in []*model.Comment, keep func(*model.Comment) bool) []*model.Comment {
	out := in[:0]
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
