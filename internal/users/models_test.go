package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "signet/pkg/domain-errors"
)

func TestNewDerivesNameFromEmail(t *testing.T) {
	user, err := New("jdoe", "", "jane.doe@example.com", "s3cret-pw")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", user.Name)
}

func TestNewKeepsExplicitName(t *testing.T) {
	user, err := New("jdoe", "Jane Doe", "someone.else@example.com", "s3cret-pw")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", user.Name)
}

func TestNewRejectsReservedUsername(t *testing.T) {
	_, err := New(AnonymousUsername, "", "", "s3cret-pw")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}
