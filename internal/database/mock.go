package database

import (
	"github.com/stretchr/testify/mock"
)

type MockBulletinRepository struct {
	mock.Mock
}

func (m *MockBulletinRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockBulletinRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockBulletinRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockBulletinRepository) GetAccountByUsername(username string) (User, error) {
	args := m.Called(username)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockBulletinRepository) ListAccounts() ([]User, error) {
	args := m.Called()
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockBulletinRepository) DeleteAccount(accountId int) error {
	args := m.Called(accountId)
	return args.Error(0)
}
func (m *MockBulletinRepository) ListAnnouncements() ([]Announcement, error) {
	args := m.Called()
	return args.Get(0).([]Announcement), args.Error(1)
}
func (m *MockBulletinRepository) GetAnnouncementById(announcementId int) (Announcement, error) {
	args := m.Called(announcementId)
	return args.Get(0).(Announcement), args.Error(1)
}
func (m *MockBulletinRepository) CreateAnnouncement(params CreateAnnouncementParams) (Announcement, error) {
	args := m.Called(params)
	return args.Get(0).(Announcement), args.Error(1)
}
func (m *MockBulletinRepository) CreateComment(params CreateCommentParams) (Comment, error) {
	args := m.Called(params)
	return args.Get(0).(Comment), args.Error(1)
}
func (m *MockBulletinRepository) ListPushSubscriptions() ([]PushSubscription, error) {
	args := m.Called()
	return args.Get(0).([]PushSubscription), args.Error(1)
}
func (m *MockBulletinRepository) CreatePushSubscription(params CreatePushSubscriptionParams) (PushSubscription, error) {
	args := m.Called(params)
	return args.Get(0).(PushSubscription), args.Error(1)
}
func (m *MockBulletinRepository) DeletePushSubscription(subscriptionId int) error {
	args := m.Called(subscriptionId)
	return args.Error(0)
}
