package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/user/tootube/internal/model"
	"github.com/user/tootube/internal/multipart"
	"github.com/user/tootube/internal/service"
)

// userResult is the public projection of a user in responses.
type userResult struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	videosTotal.Set(float64(len(snap.Videos)))
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, s.maxUpload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read request body"))
		return
	}

	form := multipart.ParseForm(body, multipart.Boundary(r.Header.Get("Content-Type")))

	req := service.UploadRequest{
		Title:       form.Fields["title"],
		Description: form.Fields["description"],
		AuthorID:    form.Fields["userId"],
		AuthorName:  form.Fields["userName"],
		IsShort:     form.Fields["isShort"] == "true",
	}
	if form.File != nil {
		req.Filename = form.File.Filename
		req.Data = form.File.Data
	}

	videoID, err := s.svc.CreateVideo(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "videoId": videoID})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	decodeJSON(r, &body)

	user, err := s.svc.Register(r.Context(), body.Nickname, body.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    userResult{ID: user.ID, Nickname: user.Nickname},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	decodeJSON(r, &body)

	user, err := s.svc.Login(r.Context(), body.Nickname, body.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    userResult{ID: user.ID, Nickname: user.Nickname},
	})
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VideoID string `json:"videoId"`
		UserID  string `json:"userId"`
		Action  string `json:"action"`
	}
	decodeJSON(r, &body)

	if err := s.svc.SetVote(r.Context(), body.VideoID, body.UserID, model.VoteAction(body.Action)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VideoID string `json:"videoId"`
	}
	decodeJSON(r, &body)

	if err := s.svc.IncrementView(r.Context(), body.VideoID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VideoID  string `json:"videoId"`
		UserID   string `json:"userId"`
		UserName string `json:"userName"`
		Text     string `json:"text"`
	}
	decodeJSON(r, &body)

	if err := s.svc.AddComment(r.Context(), body.VideoID, body.UserID, body.UserName, body.Text); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleCommentLike(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CommentID string `json:"commentId"`
		UserID    string `json:"userId"`
	}
	decodeJSON(r, &body)

	if err := s.svc.ToggleCommentLike(r.Context(), body.CommentID, body.UserID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubscriberID string `json:"subscriberId"`
		ChannelID    string `json:"channelId"`
	}
	decodeJSON(r, &body)

	if err := s.svc.ToggleSubscription(r.Context(), body.SubscriberID, body.ChannelID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID   string          `json:"userId"`
		Nickname string          `json:"nickname"`
		Password string          `json:"password"`
		Avatar   json.RawMessage `json:"avatar"`
	}
	decodeJSON(r, &body)

	req := service.UpdateUserRequest{
		UserID:   body.UserID,
		Nickname: body.Nickname,
		Password: body.Password,
	}
	// Distinguish an absent avatar key from an explicit null (which clears
	// the avatar).
	if len(body.Avatar) > 0 {
		req.SetAvatar = true
		var avatar *string
		if err := json.Unmarshal(body.Avatar, &avatar); err == nil {
			req.Avatar = avatar
		}
	}

	user, err := s.svc.UpdateUser(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    userResult{ID: user.ID, Nickname: user.Nickname},
	})
}

func (s *Server) handleVideoDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteVideo(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// writeError maps the service error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case service.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, service.ErrDuplicateNickname):
		writeJSON(w, http.StatusBadRequest, errorBody("Nickname already taken"))
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody("Invalid nickname or password"))
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("Not found"))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody("Internal server error"))
	}
}
