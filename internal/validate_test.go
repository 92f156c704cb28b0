package courier

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContact(t *testing.T) {
	valid := ContactRequest{Name: "Ali Rezaei", Email: "ali@example.com", Message: "Hello, I would like to talk."}

	tests := []struct {
		name   string
		mutate func(p *ContactRequest)
		fields []string
	}{
		{"valid", func(p *ContactRequest) {}, nil},
		{"name too short", func(p *ContactRequest) { p.Name = "A" }, []string{"name"}},
		{"name only spaces", func(p *ContactRequest) { p.Name = "   " }, []string{"name"}},
		{"name at max", func(p *ContactRequest) { p.Name = strings.Repeat("n", 80) }, nil},
		{"name too long", func(p *ContactRequest) { p.Name = strings.Repeat("n", 81) }, []string{"name"}},
		{"persian name counts runes", func(p *ContactRequest) { p.Name = strings.Repeat("ع", 80) }, nil},
		{"bad email", func(p *ContactRequest) { p.Email = "ali@" }, []string{"email"}},
		{"missing email", func(p *ContactRequest) { p.Email = "" }, []string{"email"}},
		{"message at min", func(p *ContactRequest) { p.Message = "0123456789" }, nil},
		{"message too short", func(p *ContactRequest) { p.Message = "012345678" }, []string{"message"}},
		{"message padded short", func(p *ContactRequest) { p.Message = "   short   " }, []string{"message"}},
		{"message at max", func(p *ContactRequest) { p.Message = strings.Repeat("m", 2000) }, nil},
		{"message too long", func(p *ContactRequest) { p.Message = strings.Repeat("m", 2001) }, []string{"message"}},
		{"everything wrong", func(p *ContactRequest) { *p = ContactRequest{} }, []string{"name", "email", "message"}},
		{"honeypot is not a validation error", func(p *ContactRequest) { p.Company = "ACME" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)

			_, err := ValidateContact(p, LangEnglish)
			if tt.fields == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var fe FieldErrors
			require.True(t, errors.As(err, &fe))
			assert.Len(t, fe, len(tt.fields))
			for _, f := range tt.fields {
				assert.NotEmpty(t, fe[f], "missing message for %s", f)
			}
		})
	}
}

func TestValidateContactTrims(t *testing.T) {
	p, err := ValidateContact(ContactRequest{
		Name:    "  Ali  ",
		Email:   " ali@example.com ",
		Message: "\n Hello there, friend \n",
	}, LangEnglish)

	require.NoError(t, err)
	assert.Equal(t, "Ali", p.Name)
	assert.Equal(t, "ali@example.com", p.Email)
	assert.Equal(t, "Hello there, friend", p.Message)
}

func TestContactRequestIsBot(t *testing.T) {
	assert.False(t, ContactRequest{}.IsBot())
	assert.True(t, ContactRequest{Company: "  "}.IsBot())
	assert.True(t, ContactRequest{Company: "x"}.IsBot())
}
