package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"firstName" validate:"required,max=5"`
	Genotype *string `json:"genotype,omitempty" validate:"omitempty,oneof=AA AS SS AC"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.Nil(t, Struct(&sample{Email: "a@futa.edu.ng", Name: "Ada"}))
	})

	t.Run("messages use json names", func(t *testing.T) {
		bad := "XX"
		problems := Struct(&sample{Email: "nope", Name: "Adebayo", Genotype: &bad})
		assert.ElementsMatch(t, []string{
			"email must be a valid email address",
			"firstName must be at most 5 characters",
			"genotype must be one of: AA, AS, SS, AC",
		}, problems)
	})

	t.Run("required", func(t *testing.T) {
		assert.Contains(t, Struct(&sample{Name: "Ada"}), "email is required")
	})
}

func TestPhone(t *testing.T) {
	for _, ok := range []string{"+2348012345678", "8012345678", "447911123456"} {
		assert.True(t, Phone(ok), ok)
	}
	for _, bad := range []string{"", "0801234", "+0123", "080-123-4567", "+1234567890123456"} {
		assert.False(t, Phone(bad), bad)
	}
}
