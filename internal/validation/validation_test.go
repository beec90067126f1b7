package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateSlug(t *testing.T) {
	require.NoError(t, ValidateSlug("my-app"))
	require.NoError(t, ValidateSlug("abc"))
	require.NoError(t, ValidateSlug("web-e2e-2"))
	require.NoError(t, ValidateSlug("My-App")) // normalized to lowercase first

	require.ErrorIs(t, ValidateSlug("ab"), ErrSlugTooShort)
	require.ErrorIs(t, ValidateSlug(strings.Repeat("a", 65)), ErrSlugTooLong)
	require.ErrorIs(t, ValidateSlug("-leading"), ErrInvalidSlug)
	require.ErrorIs(t, ValidateSlug("trailing-"), ErrInvalidSlug)
	require.ErrorIs(t, ValidateSlug("has space"), ErrInvalidSlug)
	require.ErrorIs(t, ValidateSlug("under_score"), ErrInvalidSlug)
}

func TestNormalizeSlug(t *testing.T) {
	require.Equal(t, "my-app", NormalizeSlug("  My-App "))
}

func TestValidateWebhookURL(t *testing.T) {
	require.NoError(t, ValidateWebhookURL("https://hooks.example.com/T123/B456"))

	require.Error(t, ValidateWebhookURL(""))
	require.Error(t, ValidateWebhookURL("http://insecure.example.com/hook"))
	require.Error(t, ValidateWebhookURL("https://"+strings.Repeat("a", 500)))
}
