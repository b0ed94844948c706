package media

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUploaderDisabled indicates that uploads are not currently enabled.
var ErrUploaderDisabled = errors.New("media uploader disabled")

// UploadInput wraps the payload required for persisting a file.
type UploadInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// UploadResult captures the canonical object key and its accessible URL.
type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Uploader hides the backing implementation for storing files.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (UploadResult, error)
}

type disabledUploader struct{}

func (disabledUploader) Upload(_ context.Context, _ UploadInput) (UploadResult, error) {
	return UploadResult{}, ErrUploaderDisabled
}

// Disabled returns an uploader that always signals disabled uploads.
func Disabled() Uploader {
	return disabledUploader{}
}

// objectName keeps the download name readable and makes it unique:
// "mockup-4x5.png" becomes "mockup-4x5-<uuid>.png".
func objectName(filename string) string {
	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(base))
	if len(ext) > 10 {
		ext = ext[:10]
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return uuid.NewString() + ext
	}
	return stem + "-" + uuid.NewString() + ext
}
