package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/lamaran/pkg/validator"
)

func TestSimplestr(t *testing.T) {
	testCases := []struct {
		Str string `validate:"required"`
		Err bool
	}{
		{
			Str: "",
			Err: true,
		},
		{
			Str: "abc",
			Err: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Str, func(t *testing.T) {
			err := validator.Validate(testCase)
			if !testCase.Err {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
		})
	}
}

func TestValidateNil(t *testing.T) {
	assert.Error(t, validator.Validate(nil))
}

type form struct {
	Name  string `schema:"name" validate:"min=2" msg:"Name must be at least 2 characters"`
	Email string `schema:"email" validate:"email" msg:"Please enter a valid email address"`
	Note  string `schema:"note" validate:"omitempty,email"`
}

func TestFields(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		fields, err := validator.Fields(&form{Name: "Al", Email: "al@example.com"})
		assert.NoError(t, err)
		assert.Nil(t, fields)
	})

	t.Run("every failing field is keyed by its form key", func(t *testing.T) {
		fields, err := validator.Fields(form{Name: "A", Email: "not-an-email", Note: "also-not"})
		require.NoError(t, err)
		assert.Equal(t, validator.FieldErrors{
			"name":  "Name must be at least 2 characters",
			"email": "Please enter a valid email address",
			"note":  "note failed on the 'email' rule",
		}, fields)
		assert.Contains(t, fields.Error(), "email: Please enter a valid email address")
	})

	t.Run("not a struct", func(t *testing.T) {
		fields, err := validator.Fields("string")
		assert.Error(t, err)
		assert.Nil(t, fields)
	})
}
