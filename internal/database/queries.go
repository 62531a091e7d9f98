package database

import (
	"time"
)

func (db *PgBulletinRepository) CreateAccount(params CreateAccountParams) (User, error) {
	now := time.Now().UTC()
	res := db.conn.QueryRow(
		"INSERT INTO users (username, password_hash, role, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, username, role, created_at, updated_at",
		params.Username,
		params.PasswordHash,
		params.Role,
		now,
		now,
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgBulletinRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, role, password_hash, created_at, updated_at FROM users "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgBulletinRepository) GetAccountByUsername(username string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, role, password_hash, created_at, updated_at FROM users "+
			"WHERE username = $1 LIMIT 1",
		username,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgBulletinRepository) ListAccounts() ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT u.id, u.username, u.role, u.created_at, u.updated_at, " +
			"(SELECT COUNT(*) FROM announcements a WHERE a.author_id = u.id), " +
			"(SELECT COUNT(*) FROM comments c WHERE c.author_id = u.id) " +
			"FROM users u ORDER BY u.created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users = make([]User, 0)
	for rows.Next() {
		var u User
		if err = rows.Scan(
			&u.Id,
			&u.Username,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
			&u.AnnouncementCount,
			&u.CommentCount,
		); err != nil {
			return nil, err
		}

		users = append(users, u)
	}

	return users, rows.Err()
}

// DeleteAccount removes the user and everything it owns in one transaction.
// The schema also cascades, but the explicit ordering keeps the behavior
// independent of driver-level FK handling.
func (db *PgBulletinRepository) DeleteAccount(accountId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec("DELETE FROM push_subscriptions WHERE user_id = $1", accountId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM comments WHERE author_id = $1", accountId)
	if err != nil {
		return err
	}

	// comments on the user's announcements go with the announcements
	_, err = tx.Exec(
		"DELETE FROM comments WHERE announcement_id IN "+
			"(SELECT id FROM announcements WHERE author_id = $1)",
		accountId,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM announcements WHERE author_id = $1", accountId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM users WHERE id = $1", accountId)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (db *PgBulletinRepository) CreateAnnouncement(params CreateAnnouncementParams) (Announcement, error) {
	now := time.Now().UTC()
	res := db.conn.QueryRow(
		"INSERT INTO announcements (external_id, title, content, author_id, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, external_id, title, content, author_id, created_at, updated_at",
		params.ExternalId,
		params.Title,
		params.Content,
		params.AuthorId,
		now,
		now,
	)

	var a Announcement
	err := res.Scan(
		&a.Id,
		&a.ExternalId,
		&a.Title,
		&a.Content,
		&a.AuthorId,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

func (db *PgBulletinRepository) GetAnnouncementById(announcementId int) (Announcement, error) {
	row := db.conn.QueryRow(
		"SELECT id, external_id, title, content, author_id, created_at, updated_at "+
			"FROM announcements WHERE id = $1 LIMIT 1",
		announcementId,
	)

	var a Announcement
	err := row.Scan(
		&a.Id,
		&a.ExternalId,
		&a.Title,
		&a.Content,
		&a.AuthorId,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

// ListAnnouncements returns all announcements newest first, each carrying its
// author and its comments in chronological order.
func (db *PgBulletinRepository) ListAnnouncements() ([]Announcement, error) {
	rows, err := db.conn.Query(
		"SELECT a.id, a.external_id, a.title, a.content, a.author_id, a.created_at, a.updated_at, " +
			"u.username, u.role " +
			"FROM announcements a JOIN users u ON a.author_id = u.id " +
			"ORDER BY a.created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var announcements = make([]Announcement, 0)
	index := make(map[int]int)
	for rows.Next() {
		var a Announcement
		if err = rows.Scan(
			&a.Id,
			&a.ExternalId,
			&a.Title,
			&a.Content,
			&a.AuthorId,
			&a.CreatedAt,
			&a.UpdatedAt,
			&a.Author.Username,
			&a.Author.Role,
		); err != nil {
			return nil, err
		}

		a.Author.Id = a.AuthorId
		a.Comments = make([]Comment, 0)
		index[a.Id] = len(announcements)
		announcements = append(announcements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	commentRows, err := db.conn.Query(
		"SELECT c.id, c.content, c.author_id, c.announcement_id, c.created_at, c.updated_at, " +
			"u.username, u.role " +
			"FROM comments c JOIN users u ON c.author_id = u.id " +
			"ORDER BY c.created_at ASC",
	)
	if err != nil {
		return nil, err
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var c Comment
		if err = commentRows.Scan(
			&c.Id,
			&c.Content,
			&c.AuthorId,
			&c.AnnouncementId,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.Author.Username,
			&c.Author.Role,
		); err != nil {
			return nil, err
		}

		c.Author.Id = c.AuthorId
		if i, ok := index[c.AnnouncementId]; ok {
			announcements[i].Comments = append(announcements[i].Comments, c)
		}
	}

	return announcements, commentRows.Err()
}

func (db *PgBulletinRepository) CreateComment(params CreateCommentParams) (Comment, error) {
	now := time.Now().UTC()
	res := db.conn.QueryRow(
		"INSERT INTO comments (content, author_id, announcement_id, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, content, author_id, announcement_id, created_at, updated_at",
		params.Content,
		params.AuthorId,
		params.AnnouncementId,
		now,
		now,
	)

	var c Comment
	err := res.Scan(
		&c.Id,
		&c.Content,
		&c.AuthorId,
		&c.AnnouncementId,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	return c, err
}

func (db *PgBulletinRepository) ListPushSubscriptions() ([]PushSubscription, error) {
	rows, err := db.conn.Query(
		"SELECT id, user_id, endpoint, p256dh, auth, created_at FROM push_subscriptions",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs = make([]PushSubscription, 0)
	for rows.Next() {
		var sub PushSubscription
		if err = rows.Scan(
			&sub.Id,
			&sub.UserId,
			&sub.Endpoint,
			&sub.P256dh,
			&sub.Auth,
			&sub.CreatedAt,
		); err != nil {
			return nil, err
		}

		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// CreatePushSubscription replaces any prior subscription for the same user or
// endpoint, keeping one active subscription per endpoint.
func (db *PgBulletinRepository) CreatePushSubscription(params CreatePushSubscriptionParams) (PushSubscription, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return PushSubscription{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec(
		"DELETE FROM push_subscriptions WHERE user_id = $1 OR endpoint = $2",
		params.UserId,
		params.Endpoint,
	)
	if err != nil {
		return PushSubscription{}, err
	}

	res := tx.QueryRow(
		"INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, user_id, endpoint, p256dh, auth, created_at",
		params.UserId,
		params.Endpoint,
		params.P256dh,
		params.Auth,
		time.Now().UTC(),
	)

	var sub PushSubscription
	err = res.Scan(
		&sub.Id,
		&sub.UserId,
		&sub.Endpoint,
		&sub.P256dh,
		&sub.Auth,
		&sub.CreatedAt,
	)
	if err != nil {
		return PushSubscription{}, err
	}

	if err = tx.Commit(); err != nil {
		return PushSubscription{}, err
	}

	return sub, nil
}

func (db *PgBulletinRepository) DeletePushSubscription(subscriptionId int) error {
	_, err := db.conn.Exec(
		"DELETE FROM push_subscriptions WHERE id = $1",
		subscriptionId,
	)

	return err
}
