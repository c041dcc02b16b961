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

func TestAnswerHandler_CreateAndList(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Cleanup()

	question := testutil.CreateTestQuestion(t, srv.DB, srv.User, srv.Channel, "needs-answers")
	path := fmt.Sprintf("/api/v1/questions/%d/answers", question.ID)

	t.Run("adds an answer", func(t *testing.T) {
		rr, env := srv.do(t, "POST", path, map[string]string{"body": "Read the docs"}, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "Answer added successfully", env.Message)

		var a models.Answer
		decodeData(t, env, &a)
		assert.Equal(t, question.ID, a.QuestionID)
		assert.Equal(t, srv.User.ID, a.UserID)
		assert.False(t, a.BestAnswer)
	})

	t.Run("requires a body", func(t *testing.T) {
		rr, env := srv.do(t, "POST", path, map[string]string{}, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		require.Len(t, env.Fields, 1)
		assert.Equal(t, "Write your answer", env.Fields[0].Message)
	})

	t.Run("requires authentication", func(t *testing.T) {
		rr, _ := srv.do(t, "POST", path, map[string]string{"body": "x"}, "")
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("unknown question", func(t *testing.T) {
		rr, env := srv.do(t, "POST", "/api/v1/questions/9999/answers", map[string]string{"body": "x"}, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
		assert.Equal(t, "Cannot find question with given id", env.Message)
	})

	t.Run("lists oldest first", func(t *testing.T) {
		testutil.CreateTestAnswer(t, srv.DB, question, srv.User, "Second answer")

		rr, env := srv.do(t, "GET", path, nil, "")
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list []models.Answer
		decodeData(t, env, &list)
		require.Len(t, list, 2)
		assert.Equal(t, "Read the docs", list[0].Body)
		assert.Equal(t, "Second answer", list[1].Body)
		assert.Equal(t, int64(2), env.Total)
	})

	t.Run("listing an unknown question", func(t *testing.T) {
		rr, _ := srv.do(t, "GET", "/api/v1/questions/9999/answers", nil, "")
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestAnswerHandler_UpdateDelete(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Cleanup()

	question := testutil.CreateTestQuestion(t, srv.DB, srv.User, srv.Channel, "answered")
	answer := testutil.CreateTestAnswer(t, srv.DB, question, srv.User, "First draft")
	other := testutil.CreateTestUser(t, srv.DB)
	otherToken := testutil.GenerateTestToken(t, srv.JWTService, other)
	path := fmt.Sprintf("/api/v1/answers/%d", answer.ID)

	t.Run("author updates", func(t *testing.T) {
		rr, env := srv.do(t, "PUT", path, map[string]string{"body": "Final answer"}, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var a models.Answer
		decodeData(t, env, &a)
		assert.Equal(t, "Final answer", a.Body)
	})

	t.Run("others cannot update", func(t *testing.T) {
		rr, env := srv.do(t, "PUT", path, map[string]string{"body": "Vandalised"}, otherToken)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
		assert.Equal(t, "You don't have access to make changes to this answer", env.Message)
	})

	t.Run("others cannot delete", func(t *testing.T) {
		rr, _ := srv.do(t, "DELETE", path, nil, otherToken)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("author deletes", func(t *testing.T) {
		rr, env := srv.do(t, "DELETE", path, nil, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "Answer deleted successfully", env.Message)

		rr, _ = srv.do(t, "DELETE", path, nil, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestAnswerHandler_MarkBest(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Cleanup()

	helper := testutil.CreateTestUser(t, srv.DB)
	helperToken := testutil.GenerateTestToken(t, srv.JWTService, helper)
	question := testutil.CreateTestQuestion(t, srv.DB, srv.User, srv.Channel, "which-is-best")
	first := testutil.CreateTestAnswer(t, srv.DB, question, helper, "first")
	second := testutil.CreateTestAnswer(t, srv.DB, question, helper, "second")

	t.Run("answer author cannot mark", func(t *testing.T) {
		rr, _ := srv.do(t, "POST", fmt.Sprintf("/api/v1/answers/%d/best", first.ID), nil, helperToken)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("question owner marks and switches", func(t *testing.T) {
		rr, _ := srv.do(t, "POST", fmt.Sprintf("/api/v1/answers/%d/best", first.ID), nil, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr, env := srv.do(t, "POST", fmt.Sprintf("/api/v1/answers/%d/best", second.ID), nil, srv.Token)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var a models.Answer
		decodeData(t, env, &a)
		assert.True(t, a.BestAnswer)

		var stored models.Answer
		require.NoError(t, srv.DB.First(&stored, first.ID).Error)
		assert.False(t, stored.BestAnswer)
	})
}
