package api

import (
	"net/http"
	"testing"

	"github.com/npezzotti/go-bulletin/internal/config"
	"github.com/npezzotti/go-bulletin/internal/database"
	"github.com/npezzotti/go-bulletin/internal/events"
	"github.com/npezzotti/go-bulletin/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewBulletinApp(t *testing.T) {
	mux := http.NewServeMux()
	logger := testutil.TestLogger(t)
	hub := events.NewHub(logger, nil)
	db := &database.MockBulletinRepository{}
	notifier := &mockNotifier{}
	cfg := &config.Config{
		ServerAddr:     "localhost:8000",
		DatabaseDSN:    "dsn",
		SigningKey:     []byte("secret"),
		AllowedOrigins: []string{"http://localhost:3000"},
	}

	app := NewBulletinApp(mux, logger, hub, db, notifier, nil, cfg)

	assert.NotNil(t, app, "expected app to be initialized")
	assert.NotNil(t, app.mux, "expected mux to be initialized")
	assert.NotNil(t, app.log, "expected logger to be set")
	assert.NotNil(t, app.db, "expected db to be set")
	assert.NotNil(t, app.generateShortId, "expected short id generator to be set")
	assert.Equal(t, app.log, logger, "expected logger to be set")
	assert.Equal(t, app.db, db, "expected db to be set")
	assert.Equal(t, app.hub, hub, "expected event hub to be set")
	assert.Equal(t, app.notifier, notifier, "expected notifier to be set")
	assert.Equal(t, app.signingKey, cfg.SigningKey, "expected signing key to be set")
	assert.Equal(t, app.allowedOrigins, cfg.AllowedOrigins, "expected allowed origins to be set")
	assert.Equal(t, app.mux.Addr, cfg.ServerAddr, "expected server address to match config")
}
