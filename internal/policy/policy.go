// Package policy decides whether a user may mutate a resource.
package policy

import "github.com/hugh/rally/internal/apperr"

const deniedMessage = "You don't have access to make changes to this resource"

// Authorize allows the mutation only when the acting user owns the resource.
// An acting id of zero means the caller is not authenticated.
func Authorize(resourceOwnerID, actingUserID uint) error {
	if actingUserID == 0 || resourceOwnerID != actingUserID {
		return apperr.AccessDenied(deniedMessage)
	}
	return nil
}

// AuthorizeQuestion is Authorize with the message shown for questions.
func AuthorizeQuestion(ownerID, actingUserID uint) error {
	if err := Authorize(ownerID, actingUserID); err != nil {
		return apperr.AccessDenied("You don't have access to make changes to this question")
	}
	return nil
}

// AuthorizeAnswer is Authorize with the message shown for answers.
func AuthorizeAnswer(ownerID, actingUserID uint) error {
	if err := Authorize(ownerID, actingUserID); err != nil {
		return apperr.AccessDenied("You don't have access to make changes to this answer")
	}
	return nil
}
