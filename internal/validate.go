package courier

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ContactRequest is a contact form submission (JSON or form encoded).
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=80"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10,max=2000"`
	Company string `json:"company,omitempty"` // honeypot
}

// IsBot reports whether the hidden honeypot field was filled in. Any content
// counts, whitespace included.
func (p ContactRequest) IsBot() bool {
	return p.Company != ""
}

// FieldErrors maps a json field name to a user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

func (fe FieldErrors) Unwrap() error { return ErrInvalidInput }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateContact trims the submission and checks it. On failure the error
// is a FieldErrors with messages in lang. The honeypot is not checked here.
func ValidateContact(p ContactRequest, lang Lang) (ContactRequest, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Message = strings.TrimSpace(p.Message)

	err := validate.Struct(p)
	if err == nil {
		return p, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return p, err
	}
	fe := FieldErrors{}
	for _, e := range verrs {
		if _, seen := fe[e.Field()]; seen {
			continue
		}
		fe[e.Field()] = fieldMessage(lang, e.Field(), e.Tag())
	}
	return p, fe
}
