package types

import (
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleParticipant Role = "PARTICIPANT"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleParticipant
}

// Capability predicates checked at the handler boundary.
func (r Role) CanPostAnnouncements() bool {
	return r == RoleAdmin
}

func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

type User struct {
	Id                int       `json:"id"`
	Username          string    `json:"username"`
	Role              Role      `json:"role"`
	AnnouncementCount int       `json:"announcement_count,omitempty"`
	CommentCount      int       `json:"comment_count,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}

type Announcement struct {
	Id         int       `json:"id"`
	ExternalId string    `json:"external_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Author     User      `json:"author"`
	Comments   []Comment `json:"comments"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

type Comment struct {
	Id             int       `json:"id"`
	Content        string    `json:"content"`
	AnnouncementId int       `json:"announcement_id"`
	Author         User      `json:"author"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

type PushSubscription struct {
	Id        int       `json:"id"`
	UserId    int       `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
