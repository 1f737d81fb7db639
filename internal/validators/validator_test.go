package validators

import (
	"errors"
	"testing"

	"github.com/anonto42/yatube/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFieldErrors(t *testing.T) {
	v := NewValidator()

	err := v.Validate(models.SignupRequest{Username: "a", Email: "nope", Password: "short"})
	fields := FieldErrors(err)
	assert.Equal(t, "Ensure this value has at least 2 characters.", fields["username"])
	assert.Equal(t, "Enter a valid email address.", fields["email"])
	assert.Equal(t, "Ensure this value has at least 8 characters.", fields["password"])

	assert.NoError(t, v.Validate(models.SignupRequest{Username: "leo", Password: "password123"}))
	assert.Nil(t, FieldErrors(errors.New("other")))
}
