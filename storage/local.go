package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"legaldata-backend/models"

	"github.com/google/uuid"
)

// Signed-link validation errors
var (
	ErrLinkExpired = errors.New("signed link expired")
	ErrLinkInvalid = errors.New("signed link signature invalid")
)

// LocalStorage implements Storage for the local filesystem. Temporary
// links are HMAC-signed paths served back through the API, standing in
// for the presigned URLs a blob service would mint.
type LocalStorage struct {
	basePath string
	secret   []byte
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath, signingSecret string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
		secret:   []byte(signingSecret),
	}, nil
}

// Upload stores a file locally
func (s *LocalStorage) Upload(ctx context.Context, category models.FileCategory, fileID uuid.UUID, filename string, data io.Reader) (string, error) {
	storagePath := generateStoragePath(category, fileID, filename)
	fullPath := filepath.Join(s.basePath, storagePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err = io.Copy(file, data); err != nil {
		os.Remove(fullPath) // Clean up on error
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return storagePath, nil
}

// Download retrieves a file from local storage
func (s *LocalStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, storagePath)

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", storagePath)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes a file from local storage
func (s *LocalStorage) Delete(ctx context.Context, storagePath string) error {
	fullPath := filepath.Join(s.basePath, storagePath)

	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// TemporaryURL mints a signed relative URL valid until the TTL elapses.
// The /files/signed route validates it with VerifySignedPath.
func (s *LocalStorage) TemporaryURL(ctx context.Context, storagePath string, ttl time.Duration) (string, error) {
	expires := time.Now().Add(ttl).Unix()
	sig := s.sign(storagePath, expires)

	q := url.Values{}
	q.Set("path", storagePath)
	q.Set("exp", strconv.FormatInt(expires, 10))
	q.Set("sig", sig)

	return "/files/signed?" + q.Encode(), nil
}

// VerifySignedPath checks a signed link's expiry and signature.
func (s *LocalStorage) VerifySignedPath(storagePath, expStr, sig string) error {
	expires, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return ErrLinkInvalid
	}

	expected := s.sign(storagePath, expires)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrLinkInvalid
	}

	if time.Now().Unix() > expires {
		return ErrLinkExpired
	}
	return nil
}

func (s *LocalStorage) sign(storagePath string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d", storagePath, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
