package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("user-1", "user-1/assignments.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	owner, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "user-1", owner)
	assert.Equal(t, "user-1/assignments.csv", path)
	assert.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return base }
	token, _, err := signer.Generate("user-1", "user-1/assignments.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	owner, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "user-1", owner)
	assert.Equal(t, "user-1/assignments.csv", path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("user-1", "user-1/assignments.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	other, _, err := signer.Generate("user-2", "user-2/assignments.csv")
	require.NoError(t, err)
	parts[0] = strings.Split(other, ".")[0]

	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	assert.Error(t, err)

	_, _, _, err = NewSignedURLSigner("other-secret", time.Hour).Parse(token, false)
	assert.Error(t, err)
}

func TestSignedURLSignerEmptySecretRejectsForgedToken(t *testing.T) {
	owner := base64.RawURLEncoding.EncodeToString([]byte("user-1"))
	path := base64.RawURLEncoding.EncodeToString([]byte("user-1/assignments.csv"))
	ts := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)
	mac := hmac.New(sha256.New, nil)
	_, _ = mac.Write([]byte(owner + "|" + ts + "|" + path))
	forged := strings.Join([]string{owner, ts, path, hex.EncodeToString(mac.Sum(nil))}, ".")

	signer := NewSignedURLSigner("", time.Hour)
	_, _, _, err := signer.Parse(forged, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret")

	_, _, err = signer.Generate("user-1", "user-1/assignments.csv")
	assert.Error(t, err)
}

func TestLocalStorageRoundTripAndCleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	rel, err := store.Save("user-1/assignments.csv", []byte("a,b\n"))
	require.NoError(t, err)

	f, err := store.Open(rel)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "user-1", "assignments.csv"), old, old))

	deleted, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1/assignments.csv"}, deleted)
	assert.NoError(t, store.Delete(rel))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.csv", []byte("x"))
	assert.Error(t, err)
	_, err = store.Open("/etc/passwd")
	assert.Error(t, err)
}
