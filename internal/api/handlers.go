package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/npezzotti/go-bulletin/internal/database"
	"github.com/npezzotti/go-bulletin/internal/events"
	"github.com/npezzotti/go-bulletin/internal/stats"
	"github.com/npezzotti/go-bulletin/internal/types"
)

type CreateAnnouncementRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CreateCommentRequest struct {
	Content        string `json:"content"`
	AnnouncementId int    `json:"announcement_id"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type SubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

type DeleteUserResponse struct {
	Success bool `json:"success"`
}

func (s *BulletinApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func userFromDb(u database.User) types.User {
	return types.User{
		Id:        u.Id,
		Username:  u.Username,
		Role:      types.Role(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func commentFromDb(c database.Comment) types.Comment {
	return types.Comment{
		Id:             c.Id,
		Content:        c.Content,
		AnnouncementId: c.AnnouncementId,
		Author: types.User{
			Id:       c.Author.Id,
			Username: c.Author.Username,
			Role:     types.Role(c.Author.Role),
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func announcementFromDb(a database.Announcement) types.Announcement {
	ann := types.Announcement{
		Id:         a.Id,
		ExternalId: a.ExternalId,
		Title:      a.Title,
		Content:    a.Content,
		Author: types.User{
			Id:       a.Author.Id,
			Username: a.Author.Username,
			Role:     types.Role(a.Author.Role),
		},
		Comments:  make([]types.Comment, 0, len(a.Comments)),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}

	for _, c := range a.Comments {
		ann.Comments = append(ann.Comments, commentFromDb(c))
	}

	return ann
}

func (s *BulletinApp) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *BulletinApp) listAnnouncements(w http.ResponseWriter, _ *http.Request) {
	dbAnns, err := s.db.ListAnnouncements()
	if err != nil {
		s.log.Println("list announcements:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var anns = make([]types.Announcement, 0, len(dbAnns))
	for _, a := range dbAnns {
		anns = append(anns, announcementFromDb(a))
	}

	s.writeJson(w, http.StatusOK, anns)
}

func (s *BulletinApp) createAnnouncement(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Title == "" || req.Content == "" {
		errResp := NewValidationError("title and content are required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	author, err := s.db.GetAccountById(sess.UserId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewUnauthorizedError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	sid, err := s.generateShortId()
	if err != nil {
		s.log.Print("generateShortId:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbAnn, err := s.db.CreateAnnouncement(database.CreateAnnouncementParams{
		ExternalId: sid,
		Title:      req.Title,
		Content:    req.Content,
		AuthorId:   author.Id,
	})
	if err != nil {
		s.log.Println("create announcement:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbAnn.Author = author
	ann := announcementFromDb(dbAnn)

	if s.stats != nil {
		s.stats.Incr(stats.AnnouncementsCreated)
	}

	// Best effort from here on: the announcement is already committed and
	// neither dispatch nor broadcast may fail the response.
	if s.notifier != nil {
		s.notifier.AnnouncementCreated(ann)
	}
	if s.hub != nil {
		s.hub.BroadcastAnnouncement(ann)
	}

	s.writeJson(w, http.StatusOK, ann)
}

func (s *BulletinApp) createComment(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Content == "" || req.AnnouncementId == 0 {
		errResp := NewValidationError("content and announcement_id are required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetAnnouncementById(req.AnnouncementId); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	author, err := s.db.GetAccountById(sess.UserId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewUnauthorizedError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbComment, err := s.db.CreateComment(database.CreateCommentParams{
		Content:        req.Content,
		AuthorId:       author.Id,
		AnnouncementId: req.AnnouncementId,
	})
	if err != nil {
		s.log.Println("create comment:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbComment.Author = author
	comment := commentFromDb(dbComment)

	if s.hub != nil {
		s.hub.BroadcastComment(comment)
	}

	s.writeJson(w, http.StatusOK, comment)
}

func (s *BulletinApp) subscribePush(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		errResp := NewValidationError("endpoint, p256dh and auth keys are required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbSub, err := s.db.CreatePushSubscription(database.CreatePushSubscriptionParams{
		UserId:   sess.UserId,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	})
	if err != nil {
		s.log.Println("create push subscription:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, types.PushSubscription{
		Id:        dbSub.Id,
		UserId:    dbSub.UserId,
		Endpoint:  dbSub.Endpoint,
		P256dh:    dbSub.P256dh,
		Auth:      dbSub.Auth,
		CreatedAt: dbSub.CreatedAt,
	})
}

func (s *BulletinApp) listUsers(w http.ResponseWriter, _ *http.Request) {
	dbUsers, err := s.db.ListAccounts()
	if err != nil {
		s.log.Println("list accounts:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var users = make([]types.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		user := userFromDb(u)
		user.AnnouncementCount = u.AnnouncementCount
		user.CommentCount = u.CommentCount
		users = append(users, user)
	}

	s.writeJson(w, http.StatusOK, users)
}

func (s *BulletinApp) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Username == "" || req.Password == "" || req.Role == "" {
		errResp := NewValidationError("username, password and role are required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !types.Role(req.Role).Valid() {
		errResp := NewValidationError("role must be ADMIN or PARTICIPANT")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if len(req.Username) < 3 {
		errResp := NewValidationError("username must be at least 3 characters")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if len(req.Password) < 6 {
		errResp := NewValidationError("password must be at least 6 characters")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// The unique constraint is the serialization point for concurrent
	// creates with the same username.
	newUser, err := s.db.CreateAccount(database.CreateAccountParams{
		Username:     req.Username,
		PasswordHash: pwdHash,
		Role:         req.Role,
	})
	if err != nil {
		var errResp *ApiError
		if database.IsUniqueViolation(err) {
			errResp = NewConflictError("username is already taken")
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, userFromDb(newUser))
}

func (s *BulletinApp) deleteUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	userId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if userId == sess.UserId {
		errResp := NewValidationError("cannot delete your own account")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetAccountById(userId); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteAccount(userId); err != nil {
		s.log.Println("delete account:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, DeleteUserResponse{Success: true})
}

func (s *BulletinApp) serveWs(w http.ResponseWriter, r *http.Request) {
	if _, ok := SessionFrom(r.Context()); !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := events.NewClient(conn, s.hub, s.log)
	s.hub.Register(client)
	go client.Write()
	go client.Read()
}
