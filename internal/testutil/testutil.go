package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/rally/internal/auth"
	"github.com/hugh/rally/internal/database"
	"github.com/hugh/rally/internal/database/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPassword is the plain password of every user made by CreateTestUser.
const TestPassword = "testpassword123"

// SetupTestDB creates an isolated in-memory SQLite database for testing.
// The shared cache keeps every pooled connection on the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { CleanupTestDB(t, db) })
	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// TestLogger returns a logger that discards everything
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestHasher is a bcrypt hasher at the minimum cost
func TestHasher() *auth.BcryptHasher {
	return auth.NewBcryptHasher(bcrypt.MinCost)
}

// CreateTestUser creates an active user with TestPassword
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := TestHasher().Hash(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:            "test-" + uuid.NewString()[:8] + "@example.com",
		Password:         hash,
		Firstname:        "Test",
		Lastname:         "User",
		Status:           models.UserStatusActive,
		VerificationCode: uuid.NewString(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestChannel creates a channel with the given name
func CreateTestChannel(t *testing.T, db *gorm.DB, name string) *models.Channel {
	t.Helper()

	channel := &models.Channel{Name: name, BgColor: "#f4f4f4"}
	if err := db.Create(channel).Error; err != nil {
		t.Fatalf("failed to create test channel: %v", err)
	}

	return channel
}

// CreateTestQuestion inserts a question directly, bypassing slug generation
func CreateTestQuestion(t *testing.T, db *gorm.DB, user *models.User, channel *models.Channel, slug string) *models.Question {
	t.Helper()

	question := &models.Question{
		ChannelID: channel.ID,
		UserID:    user.ID,
		Slug:      slug,
		Title:     "Question " + slug,
		Body:      "Body of " + slug,
	}
	if err := db.Create(question).Error; err != nil {
		t.Fatalf("failed to create test question: %v", err)
	}

	return question
}

// CreateTestAnswer inserts an answer to question by user
func CreateTestAnswer(t *testing.T, db *gorm.DB, question *models.Question, user *models.User, body string) *models.Answer {
	t.Helper()

	answer := &models.Answer{
		QuestionID: question.ID,
		UserID:     user.ID,
		Body:       body,
	}
	if err := db.Create(answer).Error; err != nil {
		t.Fatalf("failed to create test answer: %v", err)
	}

	return answer
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Channel    *models.Channel
	User       *models.User
	Token      string
}

// NewTestContext creates a complete test setup with DB, channel, user, and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	channel := CreateTestChannel(t, db, "General")
	user := CreateTestUser(t, db)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Channel:    channel,
		User:       user,
		Token:      token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
