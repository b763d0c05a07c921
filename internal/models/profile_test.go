package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPrimaryEmail tests primary email selection from a provider profile.
func TestPrimaryEmail(t *testing.T) {
	t.Run("should prefer the primary entry regardless of position", func(t *testing.T) {
		profile := RemoteProfile{Email: []EmailEntry{
			{Type: EmailTypeSecondary, Value: "second@example.com"},
			{Type: EmailTypePrimary, Value: "primary@example.com"},
		}}

		email, ok := profile.PrimaryEmail()

		require.True(t, ok)
		assert.Equal(t, "primary@example.com", email)
	})

	t.Run("should match the primary tag case-insensitively", func(t *testing.T) {
		profile := RemoteProfile{Email: []EmailEntry{
			{Type: "primary", Value: "primary@example.com"},
		}}

		email, ok := profile.PrimaryEmail()

		require.True(t, ok)
		assert.Equal(t, "primary@example.com", email)
	})

	t.Run("should fall back to the first entry without a primary tag", func(t *testing.T) {
		profile := RemoteProfile{Email: []EmailEntry{
			{Type: EmailTypeSecondary, Value: "first@example.com"},
			{Type: EmailTypeSecondary, Value: "second@example.com"},
		}}

		email, ok := profile.PrimaryEmail()

		require.True(t, ok)
		assert.Equal(t, "first@example.com", email)
	})

	t.Run("should report absence for an empty list", func(t *testing.T) {
		profile := RemoteProfile{}

		_, ok := profile.PrimaryEmail()

		assert.False(t, ok)
	})
}
