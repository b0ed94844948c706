package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalUploader stores files in a directory, optionally exposed under PublicPath.
type LocalUploader struct {
	BaseDir    string
	PublicPath string
}

// NewLocalUploader constructs an uploader that writes to the provided directory.
// If baseDir is empty, os.TempDir() is used. publicPath is the URL prefix the
// directory is served under; empty means files get no URL.
func NewLocalUploader(baseDir, publicPath string) (*LocalUploader, error) {
	dir := baseDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local media dir: %w", err)
	}
	return &LocalUploader{BaseDir: dir, PublicPath: strings.TrimSuffix(publicPath, "/")}, nil
}

// Upload writes the incoming content into BaseDir.
func (l *LocalUploader) Upload(_ context.Context, input UploadInput) (UploadResult, error) {
	if input.Body == nil {
		return UploadResult{}, fmt.Errorf("upload body is required")
	}

	name := objectName(input.Filename)
	target := filepath.Join(l.BaseDir, name)

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create media file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, input.Body); err != nil {
		os.Remove(target)
		return UploadResult{}, fmt.Errorf("write media file: %w", err)
	}

	result := UploadResult{Key: name}
	if l.PublicPath != "" {
		result.URL = path.Join(l.PublicPath, name)
	}
	return result, nil
}
