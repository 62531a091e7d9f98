package main

import (
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/npezzotti/go-bulletin/internal/database"
	"github.com/npezzotti/go-bulletin/internal/types"
	"golang.org/x/crypto/bcrypt"
)

var dsn string

type seedUser struct {
	username string
	password string
	role     types.Role
}

// Initial accounts so the board is reachable on a fresh database.
var seedUsers = []seedUser{
	{username: "admin", password: "admin123", role: types.RoleAdmin},
	{username: "user1", password: "user123", role: types.RoleParticipant},
}

func main() {
	godotenv.Load()

	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "database connection string")
	flag.Parse()

	logger := log.New(os.Stderr, "[seedusers] ", log.LstdFlags)

	if env := os.Getenv("DATABASE_DSN"); env != "" {
		dsn = env
	}

	db, err := database.NewPgBulletinRepository(dsn)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("db migrate:", err)
	}

	for _, su := range seedUsers {
		_, err := db.GetAccountByUsername(su.username)
		if err == nil {
			logger.Printf("user %q already exists, skipping", su.username)
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Fatal("lookup user:", err)
		}

		pwdHash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal("hash password:", err)
		}

		user, err := db.CreateAccount(database.CreateAccountParams{
			Username:     su.username,
			PasswordHash: string(pwdHash),
			Role:         string(su.role),
		})
		if err != nil {
			logger.Fatal("create user:", err)
		}

		logger.Printf("created %s user %q (id %d)", user.Role, user.Username, user.Id)
	}
}
