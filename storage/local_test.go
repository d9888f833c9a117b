package storage

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legaldata-backend/models"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()

	s, err := NewLocalStorage(t.TempDir(), "test-signing-secret")
	require.NoError(t, err)
	return s
}

func TestLocalStorageRoundTrip(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	path, err := s.Upload(ctx, models.CategoryInternal, uuid.New(), "memo.txt", strings.NewReader("contents"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, string(models.CategoryInternal)+"/"))

	reader, err := s.Download(ctx, path)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(data))
}

func TestLocalStorageDelete(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	path, err := s.Upload(ctx, models.CategoryInternal, uuid.New(), "memo.txt", strings.NewReader("contents"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, path))

	_, err = s.Download(ctx, path)
	assert.Error(t, err)

	// Deleting again is not an error.
	assert.NoError(t, s.Delete(ctx, path))
}

func TestLocalStorageSanitizesFilenames(t *testing.T) {
	s := newTestLocalStorage(t)

	path, err := s.Upload(context.Background(), models.CategoryAttorneyHistory, uuid.New(),
		"annual report 2025.pdf", strings.NewReader("x"))
	require.NoError(t, err)

	assert.NotContains(t, path, " ")
	assert.True(t, strings.HasSuffix(path, ".pdf"))
}

func TestTemporaryURL(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	path, err := s.Upload(ctx, models.CategoryInternal, uuid.New(), "memo.txt", strings.NewReader("contents"))
	require.NoError(t, err)

	link, err := s.TemporaryURL(ctx, path, 10*time.Minute)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "/files/signed?"))

	u, err := url.Parse(link)
	require.NoError(t, err)
	q := u.Query()

	t.Run("valid immediately", func(t *testing.T) {
		assert.NoError(t, s.VerifySignedPath(q.Get("path"), q.Get("exp"), q.Get("sig")))
	})

	t.Run("tampered path is invalid", func(t *testing.T) {
		err := s.VerifySignedPath("internal/other-file.txt", q.Get("exp"), q.Get("sig"))
		assert.ErrorIs(t, err, ErrLinkInvalid)
	})

	t.Run("tampered expiry is invalid", func(t *testing.T) {
		farFuture := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)
		err := s.VerifySignedPath(q.Get("path"), farFuture, q.Get("sig"))
		assert.ErrorIs(t, err, ErrLinkInvalid)
	})

	t.Run("garbage expiry is invalid", func(t *testing.T) {
		err := s.VerifySignedPath(q.Get("path"), "soon", q.Get("sig"))
		assert.ErrorIs(t, err, ErrLinkInvalid)
	})

	t.Run("expired link is rejected", func(t *testing.T) {
		expired, err := s.TemporaryURL(ctx, path, -time.Minute)
		require.NoError(t, err)

		u, err := url.Parse(expired)
		require.NoError(t, err)
		q := u.Query()

		err = s.VerifySignedPath(q.Get("path"), q.Get("exp"), q.Get("sig"))
		assert.ErrorIs(t, err, ErrLinkExpired)
	})

	t.Run("different secret cannot forge links", func(t *testing.T) {
		other, err := NewLocalStorage(t.TempDir(), "another-secret")
		require.NoError(t, err)

		err = other.VerifySignedPath(q.Get("path"), q.Get("exp"), q.Get("sig"))
		assert.ErrorIs(t, err, ErrLinkInvalid)
	})
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("brief.PDF"))
	assert.Equal(t, "text/plain", ContentType("notes.txt"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentType("roster.xlsx"))
	assert.Equal(t, "application/octet-stream", ContentType("archive.zip"))
}
