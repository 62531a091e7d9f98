package database

type BulletinRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByUsername(username string) (User, error)
	ListAccounts() ([]User, error)
	DeleteAccount(accountId int) error
	ListAnnouncements() ([]Announcement, error)
	GetAnnouncementById(announcementId int) (Announcement, error)
	CreateAnnouncement(params CreateAnnouncementParams) (Announcement, error)
	CreateComment(params CreateCommentParams) (Comment, error)
	ListPushSubscriptions() ([]PushSubscription, error)
	CreatePushSubscription(params CreatePushSubscriptionParams) (PushSubscription, error)
	DeletePushSubscription(subscriptionId int) error
}
