package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestOpenGateAcceptsEverything(t *testing.T) {
	gate, err := NewGate("", time.Hour)
	require.NoError(t, err)

	assert.False(t, gate.Enabled())
	assert.True(t, gate.Validate(""))
	assert.True(t, gate.Validate("anything"))

	_, err = gate.Login("whatever")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestLoginAndValidate(t *testing.T) {
	gate, err := NewGate("secret", time.Hour)
	require.NoError(t, err)
	assert.True(t, gate.Enabled())

	_, err = gate.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := gate.Login("secret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, gate.Validate(session.Token))
	assert.False(t, gate.Validate("forged"))
	assert.False(t, gate.Validate(""))

	gate.Logout(session.Token)
	assert.False(t, gate.Validate(session.Token))
}

func TestPrehashedPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	gate, err := NewGate(string(hash), time.Hour)
	require.NoError(t, err)

	_, err = gate.Login("secret")
	assert.NoError(t, err)
}

func TestSessionExpiry(t *testing.T) {
	gate, err := NewGate("secret", time.Nanosecond)
	require.NoError(t, err)

	session, err := gate.Login("secret")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	assert.False(t, gate.Validate(session.Token))
}
