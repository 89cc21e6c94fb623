package intake

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	})
	return v
}

// Submission is the sender-supplied payload. Length is counted in characters.
type Submission struct {
	Content string `validate:"max=300"`
}

// Registration describes the handle rules applied to new accounts.
type Registration struct {
	Handle string `validate:"required,min=2,max=20,handle"`
}

// Validate checks content for emptiness and length and returns it unchanged.
// No escaping or control-character stripping happens here.
func Validate(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", feedback.ErrEmptyContent
	}
	if err := validate.Struct(Submission{Content: content}); err != nil {
		return "", feedback.ErrTooLong
	}
	return content, nil
}

// ValidateHandle checks a handle before an account is created for it.
func ValidateHandle(handle string) error {
	if err := validate.Struct(Registration{Handle: handle}); err != nil {
		return fmt.Errorf("invalid handle %q: %w", handle, err)
	}
	return nil
}
