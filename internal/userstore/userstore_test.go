package userstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileDefaultsWhenMissing(t *testing.T) {
	s := New(t.TempDir())

	profile, err := s.GetProfile("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "No bio yet.", profile.Bio)
	assert.Contains(t, profile.AvatarURL, "seed=alice")
}

func TestUpdateProfilePersistsAndMerges(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.UpdateProfile("alice", Profile{Bio: "Anchor maintainer"})
	require.NoError(t, err)

	updated, err := s.UpdateProfile("alice", Profile{Location: "Remote"})
	require.NoError(t, err)
	assert.Equal(t, "Anchor maintainer", updated.Bio, "earlier field survives a later partial update")
	assert.Equal(t, "Remote", updated.Location)

	reloaded, err := s.GetProfile("alice")
	require.NoError(t, err)
	assert.Equal(t, updated, reloaded)
}

func TestAddKeyDerivesIDFromContent(t *testing.T) {
	s := New(t.TempDir())

	keys, err := s.AddKey("alice", "laptop", "ssh-ed25519 AAAAfake alice@laptop")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Len(t, keys[0].ID, 8)
	assert.Equal(t, keyID("ssh-ed25519 AAAAfake alice@laptop"), keys[0].ID)
}

func TestAddKeyRejectsEmpty(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.AddKey("alice", "laptop", "")
	assert.Error(t, err)
}

func TestDeleteKeyRemovesOnlyMatchingID(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.AddKey("alice", "laptop", "key-one")
	require.NoError(t, err)
	keys, err := s.AddKey("alice", "desktop", "key-two")
	require.NoError(t, err)
	require.Len(t, keys, 2)

	remaining, err := s.DeleteKey("alice", keys[0].ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "key-two", remaining[0].Key)
}

func TestTwoFactorDisabledByDefault(t *testing.T) {
	s := New(t.TempDir())

	tf, err := s.GetTwoFactor("alice")
	require.NoError(t, err)
	assert.False(t, tf.Enabled)
}

func TestTwoFactorSetupRequiresConfirmationBeforeEnabled(t *testing.T) {
	s := New(t.TempDir())

	setup, err := s.GenerateTwoFactorSetup("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.URL, "otpauth://")

	tf, err := s.GetTwoFactor("alice")
	require.NoError(t, err)
	assert.False(t, tf.Enabled, "generating a setup must not enable 2FA until confirmed")
}

func TestConfirmTwoFactorRejectsBadCode(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.GenerateTwoFactorSetup("alice")
	require.NoError(t, err)

	err = s.ConfirmTwoFactor("alice", "000000")
	assert.Error(t, err)
}

func TestVerifyTwoFactorCodeFalseWhenNotEnabled(t *testing.T) {
	s := New(t.TempDir())

	ok, err := s.VerifyTwoFactorCode("alice", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDisableTwoFactorClearsSecret(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.GenerateTwoFactorSetup("alice")
	require.NoError(t, err)

	require.NoError(t, s.DisableTwoFactor("alice"))

	tf, err := s.GetTwoFactor("alice")
	require.NoError(t, err)
	assert.False(t, tf.Enabled)
	assert.Empty(t, tf.Secret)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NoError(t, s.SetPasswordHash("alice", hash))

	stored, err := s.GetPasswordHash("alice")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("correct horse battery staple", stored))
	assert.False(t, VerifyPassword("wrong", stored))
}

func TestGetPasswordHashEmptyWhenUnset(t *testing.T) {
	s := New(t.TempDir())

	hash, err := s.GetPasswordHash("alice")
	require.NoError(t, err)
	assert.Empty(t, hash)
}

func TestRenameUserMovesDirectory(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.UpdateProfile("alice", Profile{Bio: "before rename"})
	require.NoError(t, err)

	require.NoError(t, s.RenameUser("alice", "alicia"))

	profile, err := s.GetProfile("alicia")
	require.NoError(t, err)
	assert.Equal(t, "before rename", profile.Bio)
}

func TestRenameUserConflictsOnExistingTarget(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.UpdateProfile("alice", Profile{Bio: "a"})
	require.NoError(t, err)
	_, err = s.UpdateProfile("bob", Profile{Bio: "b"})
	require.NoError(t, err)

	err = s.RenameUser("alice", "bob")
	assert.Error(t, err)
}

func TestRenameUserMissingSourceNotFound(t *testing.T) {
	s := New(t.TempDir())

	err := s.RenameUser("ghost", "somebody")
	assert.Error(t, err)
}
