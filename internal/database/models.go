package database

import "time"

type User struct {
	Id                int
	Username          string
	Role              string
	PasswordHash      string
	AnnouncementCount int
	CommentCount      int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Announcement struct {
	Id         int
	ExternalId string
	Title      string
	Content    string
	AuthorId   int
	Author     User
	Comments   []Comment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Comment struct {
	Id             int
	Content        string
	AuthorId       int
	AnnouncementId int
	Author         User
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type PushSubscription struct {
	Id        int
	UserId    int
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}

type CreateAccountParams struct {
	Username     string
	PasswordHash string
	Role         string
}

type CreateAnnouncementParams struct {
	ExternalId string
	Title      string
	Content    string
	AuthorId   int
}

type CreateCommentParams struct {
	Content        string
	AuthorId       int
	AnnouncementId int
}

type CreatePushSubscriptionParams struct {
	UserId   int
	Endpoint string
	P256dh   string
	Auth     string
}
