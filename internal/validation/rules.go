package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/hugh/rally/internal/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Rule is one named check with the message shown when it fails.
type Rule struct {
	Name    string
	Message string
	// Presence rules run on absent and blank values, the others skip them.
	presence bool
	check    func(ctx context.Context, v *Validator, value string) (bool, error)
}

// Field is the ordered rule list for one input field.
type Field struct {
	Name  string
	Rules []Rule
}

// Rules is an ordered rule table for one kind of input.
type Rules []Field

func Required(message string) Rule {
	return Rule{Name: "required", Message: message, presence: true,
		check: func(_ context.Context, _ *Validator, value string) (bool, error) {
			return strings.TrimSpace(value) != "", nil
		}}
}

func Email(message string) Rule {
	return Rule{Name: "email", Message: message,
		check: func(_ context.Context, _ *Validator, value string) (bool, error) {
			return IsValidEmail(value), nil
		}}
}

func Max(n int, message string) Rule {
	return Rule{Name: "max", Message: message,
		check: func(_ context.Context, _ *Validator, value string) (bool, error) {
			return MaxLength(value, n), nil
		}}
}

func Integer(message string) Rule {
	return Rule{Name: "integer", Message: message,
		check: func(_ context.Context, _ *Validator, value string) (bool, error) {
			return IsInteger(value), nil
		}}
}

// Unique fails when a row of table already holds value in column.
func Unique(table, column, message string) Rule {
	return Rule{Name: "unique", Message: message,
		check: func(ctx context.Context, v *Validator, value string) (bool, error) {
			if v.db == nil {
				return false, fmt.Errorf("unique rule on %s.%s needs a database", table, column)
			}
			var count int64
			err := v.db.WithContext(ctx).
				Table(table).
				Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
				Count(&count).Error
			if err != nil {
				return false, fmt.Errorf("checking %s.%s: %w", table, column, err)
			}
			return count == 0, nil
		}}
}

var (
	QuestionRules = Rules{
		{Name: "title", Rules: []Rule{
			Required("Give your question a descriptive title"),
			Max(100, "Title should be 100 characters long"),
		}},
		{Name: "body", Rules: []Rule{
			Required("Write some description of your question"),
		}},
		{Name: "channel", Rules: []Rule{
			Required("It is required to choose a channel for this question"),
			Integer("Invalid channel id"),
		}},
	}

	// QuestionPatchRules validate only the fields a partial update sends.
	QuestionPatchRules = Rules{
		{Name: "title", Rules: []Rule{Max(100, "Title should be 100 characters long")}},
		{Name: "channel", Rules: []Rule{Integer("Invalid channel id")}},
	}

	AnswerRules = Rules{
		{Name: "body", Rules: []Rule{Required("Write your answer")}},
	}

	NewUserRules = Rules{
		{Name: "email", Rules: []Rule{
			Required("Enter email address to be used for login"),
			Email("Email address is not valid"),
			Unique("users", "email", "There's already an account with this email address"),
		}},
		{Name: "password", Rules: []Rule{
			Required("Choose password for your account"),
		}},
	}

	LoginRules = Rules{
		{Name: "email", Rules: []Rule{
			Required("Email is required to login to your account"),
			Email("Enter a valid email address to login to your account"),
		}},
		{Name: "password", Rules: []Rule{
			Required("Enter your account password"),
		}},
	}
)

// Validator runs rule tables. The database is only needed by Unique.
type Validator struct {
	db *gorm.DB
}

func NewValidator(db *gorm.DB) *Validator {
	return &Validator{db: db}
}

// Validate checks data against rules and reports the first failing rule of
// each field, in table order. A missing key means the field was not sent.
func (v *Validator) Validate(ctx context.Context, data map[string]string, rules Rules) error {
	var failures []apperr.FieldError

	for _, field := range rules {
		value, present := data[field.Name]
		blank := !present || strings.TrimSpace(value) == ""

		for _, rule := range field.Rules {
			if blank && !rule.presence {
				continue
			}
			ok, err := rule.check(ctx, v, value)
			if err != nil {
				return err
			}
			if !ok {
				failures = append(failures, apperr.FieldError{
					Field:      field.Name,
					Validation: rule.Name,
					Message:    rule.Message,
				})
				break
			}
		}
	}

	if len(failures) > 0 {
		return apperr.Validation(failures)
	}
	return nil
}
