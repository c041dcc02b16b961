package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/hugh/rally/internal/database/models"
	"github.com/hugh/rally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionHandler_List(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Cleanup()

	t.Run("empty", func(t *testing.T) {
		rr, env := srv.do(t, "GET", "/api/v1/questions", nil, "")
		testutil.AssertStatus(t, rr, http.StatusOK)
		var list []models.Question
		decodeData(t, env, &list)
		assert.Empty(t, list)
		assert.Equal(t, int64(0), env.Total)
	})

	for i := 1; i <= 3; i++ {
		testutil.CreateTestQuestion(t, srv.DB, srv.User, srv.Channel, fmt.Sprintf("question-%d", i))
	}

	t.Run("newest first", func(t *testing.T) {
		rr, env := srv.do(t, "GET", "/api/v1/questions", nil, "")
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list []models.Question
		decodeData(t, env, &list)
		require.Len(t, list, 3)
		assert.Equal(t, "question-3", list[0].Slug)
		assert.Equal(t, int64(3), env.Total)
		assert.Equal(t, 1, env.Page)
		assert.Equal(t, 20, env.PerPage)
		assert.Equal(t, 1, env.TotalPages)
	})

	t.Run("paginated", func(t *testing.T) {
		rr, env := srv.do(t, "GET", "/api/v1/questions?page=2&per_page=2", nil, "")
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list []models.Question
		decodeData(t, env, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "question-1", list[0].Slug)
		assert.Equal(t, 2, env.TotalPages)
	})
}

func TestQuestionHandler_Create(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Cleanup()

	t.Run("creates with a slug", func(t *testing.T) {
		body := map[string]interface{}{
			"title":   "How to use Adonis?",
			"body":    "Looking for a getting started guide",
			"channel": srv.Channel.ID,
		}

		rr, env := srv.do(t, "POST", "/api/v1/questions", body, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "Question created successfully", env.Message)

		var q models.Question
		decodeData(t, env, &q)
		assert.Equal(t, "how-to-use-adonis", q.Slug)
		assert.Equal(t, srv.User.ID, q.UserID)
		assert.Equal(t, srv.Channel.ID, q.ChannelID)
	})

	t.Run("same title gets a numbered slug", func(t *testing.T) {
		body := map[string]interface{}{
			"title":   "How to use Adonis?",
			"body":    "Second time around",
			"channel": fmt.Sprint(srv.Channel.ID),
		}

		rr, env := srv.do(t, "POST", "/api/v1/questions", body, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var q models.Question
		decodeData(t, env, &q)
		assert.Equal(t, "how-to-use-adonis-1", q.Slug)
	})

	t.Run("requires authentication", func(t *testing.T) {
		body := map[string]interface{}{"title": "Anonymous", "body": "x", "channel": srv.Channel.ID}
		rr, _ := srv.do(t, "POST", "/api/v1/questions", body, "")
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name    string
			body    map[string]interface{}
			field   string
			rule    string
			message string
		}{
			{
				name:    "missing title",
				body:    map[string]interface{}{"body": "x", "channel": srv.Channel.ID},
				field:   "title",
				rule:    "required",
				message: "Give your question a descriptive title",
			},
			{
				name:    "missing body",
				body:    map[string]interface{}{"title": "A title", "channel": srv.Channel.ID},
				field:   "body",
				rule:    "required",
				message: "Write some description of your question",
			},
			{
				name:    "missing channel",
				body:    map[string]interface{}{"title": "A title", "body": "x"},
				field:   "channel",
				rule:    "required",
				message: "It is required to choose a channel for this question",
			},
			{
				name:    "non integer channel",
				body:    map[string]interface{}{"title": "A title", "body": "x", "channel": "foo"},
				field:   "channel",
				rule:    "integer",
				message: "Invalid channel id",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rr, env := srv.do(t, "POST", "/api/v1/questions", tt.body, srv.Token)
				testutil.AssertStatus(t, rr, http.StatusBadRequest)
				assert.Equal(t, http.StatusBadRequest, env.Status)
				assert.Equal(t, "Validation failed", env.Message)
				require.Len(t, env.Fields, 1)
				assert.Equal(t, tt.field, env.Fields[0].Field)
				assert.Equal(t, tt.rule, env.Fields[0].Validation)
				assert.Equal(t, tt.message, env.Fields[0].Message)
			})
		}
	})

	t.Run("unknown channel", func(t *testing.T) {
		body := map[string]interface{}{"title": "A title", "body": "x", "channel": 9999}
		rr, env := srv.do(t, "POST", "/api/v1/questions", body, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
		assert.Equal(t, "Cannot find channel with given id", env.Message)
		assert.Equal(t, http.StatusNotFound, env.Status)
	})
}

func TestQuestionHandler_Show(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Cleanup()

	testutil.CreateTestQuestion(t, srv.DB, srv.User, srv.Channel, "what-is-go")

	t.Run("found", func(t *testing.T) {
		rr, env := srv.do(t, "GET", "/api/v1/questions/what-is-go", nil, "")
		testutil.AssertStatus(t, rr, http.StatusOK)

		var q models.Question
		decodeData(t, env, &q)
		assert.Equal(t, "what-is-go", q.Slug)
		require.NotNil(t, q.Channel)
		require.NotNil(t, q.User)
		assert.Equal(t, srv.Channel.Name, q.Channel.Name)
		assert.Equal(t, srv.User.Email, q.User.Email)
	})

	t.Run("not found", func(t *testing.T) {
		rr, env := srv.do(t, "GET", "/api/v1/questions/missing", nil, "")
		testutil.AssertStatus(t, rr, http.StatusNotFound)
		assert.Equal(t, "Cannot find question with given slug", env.Message)
	})
}

func TestQuestionHandler_Update(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Cleanup()

	question := testutil.CreateTestQuestion(t, srv.DB, srv.User, srv.Channel, "original")
	other := testutil.CreateTestUser(t, srv.DB)
	otherToken := testutil.GenerateTestToken(t, srv.JWTService, other)
	path := fmt.Sprintf("/api/v1/questions/%d", question.ID)

	t.Run("put replaces fields and keeps slug", func(t *testing.T) {
		second := testutil.CreateTestChannel(t, srv.DB, "Golang")
		body := map[string]interface{}{"title": "Renamed", "body": "New body", "channel": second.ID}

		rr, env := srv.do(t, "PUT", path, body, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "Question updated successfully", env.Message)

		var q models.Question
		decodeData(t, env, &q)
		assert.Equal(t, "Renamed", q.Title)
		assert.Equal(t, "New body", q.Body)
		assert.Equal(t, second.ID, q.ChannelID)
		assert.Equal(t, "original", q.Slug)
	})

	t.Run("put requires every field", func(t *testing.T) {
		body := map[string]interface{}{"title": "Only title"}
		rr, env := srv.do(t, "PUT", path, body, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		assert.NotEmpty(t, env.Fields)
	})

	t.Run("patch keeps absent fields", func(t *testing.T) {
		body := map[string]interface{}{"title": "Patched"}
		rr, env := srv.do(t, "PATCH", path, body, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var q models.Question
		decodeData(t, env, &q)
		assert.Equal(t, "Patched", q.Title)
		assert.Equal(t, "New body", q.Body)
	})

	t.Run("patch rejects empty title", func(t *testing.T) {
		body := map[string]interface{}{"title": ""}
		rr, env := srv.do(t, "PATCH", path, body, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		require.Len(t, env.Fields, 1)
		assert.Equal(t, "title", env.Fields[0].Field)
	})

	t.Run("other users are denied", func(t *testing.T) {
		body := map[string]interface{}{"title": "Hijacked", "body": "x", "channel": srv.Channel.ID}
		rr, env := srv.do(t, "PUT", path, body, otherToken)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
		assert.Equal(t, "You don't have access to make changes to this question", env.Message)

		var stored models.Question
		require.NoError(t, srv.DB.First(&stored, question.ID).Error)
		assert.Equal(t, "Patched", stored.Title)
	})

	t.Run("other users are denied whatever the payload", func(t *testing.T) {
		tests := []struct {
			name   string
			method string
			body   interface{}
		}{
			{"unknown channel", "PATCH", map[string]interface{}{"channel": 9999}},
			{"invalid channel", "PATCH", map[string]interface{}{"channel": "foo"}},
			{"empty title", "PATCH", map[string]interface{}{"title": ""}},
			{"missing fields", "PUT", map[string]interface{}{}},
			{"malformed body", "PUT", "not an object"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rr, env := srv.do(t, tt.method, path, tt.body, otherToken)
				testutil.AssertStatus(t, rr, http.StatusForbidden)
				assert.Equal(t, "You don't have access to make changes to this question", env.Message)
			})
		}
	})

	t.Run("channel id with surrounding space", func(t *testing.T) {
		body := map[string]interface{}{"channel": fmt.Sprintf(" %d ", srv.Channel.ID)}
		rr, env := srv.do(t, "PATCH", path, body, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var q models.Question
		decodeData(t, env, &q)
		assert.Equal(t, srv.Channel.ID, q.ChannelID)
	})

	t.Run("negative channel id is not found", func(t *testing.T) {
		body := map[string]interface{}{"channel": -3}
		rr, env := srv.do(t, "PATCH", path, body, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
		assert.Equal(t, "Cannot find channel with given id", env.Message)
	})

	t.Run("unknown question", func(t *testing.T) {
		body := map[string]interface{}{"title": "x"}
		rr, _ := srv.do(t, "PATCH", "/api/v1/questions/9999", body, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestQuestionHandler_Delete(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Cleanup()

	question := testutil.CreateTestQuestion(t, srv.DB, srv.User, srv.Channel, "to-delete")
	testutil.CreateTestAnswer(t, srv.DB, question, srv.User, "an answer")
	other := testutil.CreateTestUser(t, srv.DB)
	path := fmt.Sprintf("/api/v1/questions/%d", question.ID)

	t.Run("other users are denied", func(t *testing.T) {
		rr, _ := srv.do(t, "DELETE", path, nil, testutil.GenerateTestToken(t, srv.JWTService, other))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("owner deletes question and answers", func(t *testing.T) {
		rr, env := srv.do(t, "DELETE", path, nil, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "Question deleted successfully", env.Message)

		var count int64
		srv.DB.Model(&models.Question{}).Where("id = ?", question.ID).Count(&count)
		assert.Zero(t, count)
		srv.DB.Model(&models.Answer{}).Where("question_id = ?", question.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("already deleted", func(t *testing.T) {
		rr, _ := srv.do(t, "DELETE", path, nil, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}
