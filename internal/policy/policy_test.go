package policy

import (
	"errors"
	"testing"

	"github.com/hugh/rally/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		owner   uint
		acting  uint
		allowed bool
	}{
		{"owner", 7, 7, true},
		{"other user", 7, 8, false},
		{"unauthenticated", 7, 0, false},
		{"unowned resource", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.owner, tt.acting)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, apperr.ErrAccessDenied))
		})
	}
}

func TestAuthorizeQuestion_Message(t *testing.T) {
	err := AuthorizeQuestion(1, 2)
	assert.True(t, errors.Is(err, apperr.ErrAccessDenied))
	assert.Equal(t, "You don't have access to make changes to this question", err.Error())
	assert.NoError(t, AuthorizeQuestion(3, 3))
}

func TestAuthorizeAnswer_Message(t *testing.T) {
	err := AuthorizeAnswer(1, 2)
	assert.Equal(t, "You don't have access to make changes to this answer", err.Error())
}
