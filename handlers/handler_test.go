package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/superrabbithero/appmanage/auth"
	"github.com/superrabbithero/appmanage/clients"
	"github.com/superrabbithero/appmanage/database"
	handler "github.com/superrabbithero/appmanage/handlers"
	"github.com/superrabbithero/appmanage/models"
	"github.com/superrabbithero/appmanage/router"
	"github.com/superrabbithero/appmanage/storage"
)

// fakeCards numbers its answers so repeated lookups are distinguishable.
type fakeCards struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeCards) AnswerCard(_ context.Context, env, cardType, paperID string) (*clients.AnswerCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &clients.AnswerCard{Params: "v" + strconv.Itoa(f.calls), Name: env + "/" + cardType + "/" + paperID, PDFURL: "https://cdn/p.pdf"}, nil
}

type fakeGenerator struct{}

func (fakeGenerator) GenerateImage(context.Context, string) (*clients.GeneratedImage, error) {
	return &clients.GeneratedImage{Data: []byte("png"), MIMEType: "image/png"}, nil
}

type testServer struct {
	app    *fiber.App
	db     *gorm.DB
	store  *storage.MemoryStore
	tokens *auth.Service
	cards  *fakeCards
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Open("sqlite", "file::memory:", logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.MigrateModels(db))

	store := storage.NewMemoryStore("https://cdn.example.com")
	cards := &fakeCards{}
	tokens := auth.NewService("secret", "appmanage", time.Hour)
	h := handler.New(db, handler.Services{
		Store:        store,
		Tokens:       tokens,
		AnswerCards:  cards,
		Generator:    fakeGenerator{},
		SignedURLTTL: time.Minute,
	})

	app := fiber.New()
	router.SetupRoutes(app, h, tokens)
	return &testServer{app: app, db: db, store: store, tokens: tokens, cards: cards}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// do sends body as JSON (a string is sent verbatim) and decodes the envelope.
func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	user := &models.User{UserName: "tester", Password: "x"}
	require.NoError(t, s.db.Create(user).Error)
	tokenStr, err := s.tokens.Issue(user)
	require.NoError(t, err)
	return tokenStr
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v), string(env.Data))
}

// raw posts a JSON body and returns the response body unparsed.
func (s *testServer) raw(t *testing.T, method, path string, body []byte) []byte {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return out
}
