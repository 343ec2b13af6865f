package apidoc

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	doc := New("lamaran", "1.0.0", "http://localhost:3000")

	require.Contains(t, doc.Paths, PathApplications)
	require.NotNil(t, doc.Paths[PathApplications].Post)
	require.NotNil(t, doc.Paths[PathApplicationsDefaults].Get)
	require.NotNil(t, doc.Paths[PathResume].Get)

	form := doc.Components.Schemas["ApplicationForm"].Value
	require.NotNil(t, form)
	assert.Contains(t, form.Required, "applicantName")
	assert.NotContains(t, form.Required, "companyEmail")
	assert.Equal(t, uint64(50), form.Properties["mainParagraph"].Value.MinLength)
	assert.Equal(t, "email", form.Properties["email"].Value.Format)
	assert.NotContains(t, form.Properties, "cvFile")
	assert.Equal(t, "Name must be at least 2 characters", form.Properties["applicantName"].Value.Description)

	multipart := doc.Paths[PathApplications].Post.RequestBody.Value.Content["multipart/form-data"]
	require.NotNil(t, multipart)
	require.Contains(t, multipart.Schema.Value.Properties, "cvFile")
	assert.Equal(t, "binary", multipart.Schema.Value.Properties["cvFile"].Value.Format)
	assert.NotEmpty(t, multipart.Schema.Value.Properties["cvFile"].Value.Description)

	result := doc.Components.Schemas["SendResult"].Value
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Properties["fields"].Value.Description)

	b, err := doc.MarshalJSON()
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "3.0.0", out["openapi"])
}

func TestDescribed(t *testing.T) {
	s := described(openapi3.NewStringSchema(), "phone number")
	assert.Equal(t, "phone number", s.Description)
	assert.Equal(t, "string", s.Type)
}

func TestMinLength(t *testing.T) {
	n, ok := minLength("min=20")
	assert.True(t, ok)
	assert.Equal(t, int64(20), n)

	_, ok = minLength("omitempty,email")
	assert.False(t, ok)
}
