package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftstore/driftstore/models"
)

// newTestFileStore lowers the Argon2id cost so the test suite does not burn
// 64 MiB per key derivation. The cipher path is identical.
func newTestFileStore(t *testing.T, path, groupKey, secret string) *FileStore {
	t.Helper()

	fs, err := NewFileStore(path, groupKey, secret)
	require.NoError(t, err)
	fs.argonMemory = 64
	fs.argonThreads = 1
	return fs
}

func credPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "credentials.json")
}

func TestNewFileStore_Validation(t *testing.T) {
	_, err := NewFileStore("", "app_1", "secret")
	assert.Error(t, err)

	_, err = NewFileStore("creds.json", "", "secret")
	assert.Error(t, err)

	_, err = NewFileStore("creds.json", "app_1", "")
	assert.Error(t, err)
}

func TestFileStore_RoundTrip(t *testing.T) {
	fs := newTestFileStore(t, credPath(t), "app_1", "secret")

	want := models.Credential{
		UserID:       "u1",
		AuthToken:    "tok-1",
		RefreshToken: "ref-1",
	}
	require.NoError(t, fs.Store(want))

	got, err := fs.Load("u1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStore_LoadMissing(t *testing.T) {
	fs := newTestFileStore(t, credPath(t), "app_1", "secret")

	_, err := fs.Load("nobody")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestFileStore_StoreReplacesExisting(t *testing.T) {
	fs := newTestFileStore(t, credPath(t), "app_1", "secret")

	require.NoError(t, fs.Store(models.Credential{UserID: "u1", AuthToken: "old"}))
	require.NoError(t, fs.Store(models.Credential{UserID: "u1", AuthToken: "new"}))

	got, err := fs.Load("u1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.AuthToken)
}

func TestFileStore_Delete(t *testing.T) {
	fs := newTestFileStore(t, credPath(t), "app_1", "secret")

	require.NoError(t, fs.Store(models.Credential{UserID: "u1", AuthToken: "tok"}))
	require.NoError(t, fs.Delete("u1"))

	_, err := fs.Load("u1")
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	// Deleting an absent entry is not an error.
	assert.NoError(t, fs.Delete("u1"))
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := credPath(t)

	first := newTestFileStore(t, path, "app_1", "secret")
	require.NoError(t, first.Store(models.Credential{UserID: "u1", AuthToken: "tok"}))

	second := newTestFileStore(t, path, "app_1", "secret")
	got, err := second.Load("u1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.AuthToken)
}

func TestFileStore_GroupKeyIsolation(t *testing.T) {
	path := credPath(t)

	appA := newTestFileStore(t, path, "app_a", "secret")
	appB := newTestFileStore(t, path, "app_b", "secret")

	require.NoError(t, appA.Store(models.Credential{UserID: "u1", AuthToken: "a-tok"}))
	require.NoError(t, appB.Store(models.Credential{UserID: "u1", AuthToken: "b-tok"}))

	gotA, err := appA.Load("u1")
	require.NoError(t, err)
	gotB, err := appB.Load("u1")
	require.NoError(t, err)

	assert.Equal(t, "a-tok", gotA.AuthToken)
	assert.Equal(t, "b-tok", gotB.AuthToken)
}

func TestFileStore_WrongSecretFailsToDecrypt(t *testing.T) {
	path := credPath(t)

	fs := newTestFileStore(t, path, "app_1", "secret")
	require.NoError(t, fs.Store(models.Credential{UserID: "u1", AuthToken: "tok"}))

	wrong := newTestFileStore(t, path, "app_1", "not-the-secret")
	_, err := wrong.Load("u1")
	assert.ErrorIs(t, err, ErrCredentialDecrypt)
}

func TestFileStore_CorruptedFileFailsToDecrypt(t *testing.T) {
	path := credPath(t)

	fs := newTestFileStore(t, path, "app_1", "secret")
	require.NoError(t, fs.Store(models.Credential{UserID: "u1", AuthToken: "tok"}))

	require.NoError(t, os.WriteFile(path, []byte("not an envelope"), 0o600))

	_, err := fs.Load("u1")
	assert.ErrorIs(t, err, ErrCredentialDecrypt)
}

func TestFileStore_BlobIsNotPlaintext(t *testing.T) {
	path := credPath(t)

	fs := newTestFileStore(t, path, "app_1", "secret")
	require.NoError(t, fs.Store(models.Credential{UserID: "u1", AuthToken: "super-secret-token"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-token")
	assert.NotContains(t, string(raw), "u1")
}

func TestFileStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "credentials.json")

	fs := newTestFileStore(t, path, "app_1", "secret")
	require.NoError(t, fs.Store(models.Credential{UserID: "u1", AuthToken: "tok"}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ms := NewMemoryStore()

	want := models.Credential{UserID: "u1", AuthToken: "tok"}
	require.NoError(t, ms.Store(want))

	got, err := ms.Load("u1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, ms.Delete("u1"))
	_, err = ms.Load("u1")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	assert.True(t, TokenExpired(signedToken(t, now.Add(-time.Minute)), now))
	assert.False(t, TokenExpired(signedToken(t, now.Add(time.Hour)), now))

	// Opaque tokens and tokens without exp are left to the backend's 401.
	assert.False(t, TokenExpired("not-a-jwt", now))

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"})
	signed, err := noExp.SignedString([]byte("test-key"))
	require.NoError(t, err)
	assert.False(t, TokenExpired(signed, now))
}
