// Package imaging prepares uploaded photos for the image model: it enforces
// the upload size limit and transcodes formats the model does not accept.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"mime"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxUploadBytes is the largest upload accepted.
const MaxUploadBytes = 10 * 1024 * 1024

// MaxPixels bounds the raster a transcode may allocate. Headers are checked
// against it before any pixel data is decoded.
const MaxPixels = 40_000_000

var (
	ErrFileTooLarge = errors.New("imaging: file too large")
	ErrRead         = errors.New("imaging: could not read file")
	ErrDecode       = errors.New("imaging: could not decode image")
	ErrEnvironment  = errors.New("imaging: raster surface unavailable")
)

// acceptedTypes are forwarded to the model untouched.
var acceptedTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
	"image/heic": {},
	"image/heif": {},
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Payload is an image ready to be sent inline to the model.
type Payload struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// Base64 returns the standard base64 encoding of the payload bytes.
func (p Payload) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// Normalizer validates and, when needed, transcodes uploads.
type Normalizer struct {
	// MaxBytes overrides MaxUploadBytes when positive.
	MaxBytes int64
	// MaxPixels overrides the package MaxPixels when positive.
	MaxPixels int

	encode func(io.Writer, image.Image) error
}

// Accepted reports whether the content type is forwarded without transcoding.
func Accepted(contentType string) bool {
	_, ok := acceptedTypes[mediaType(contentType)]
	return ok
}

// Normalize returns the upload as a model-ready payload.
func (n Normalizer) Normalize(up Upload) (Payload, error) {
	limit := n.limit()
	if up.Size > limit {
		return Payload{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, up.Size, limit)
	}
	if up.Body == nil {
		return Payload{}, fmt.Errorf("%w: empty body", ErrRead)
	}

	data, err := io.ReadAll(io.LimitReader(up.Body, limit+1))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if int64(len(data)) > limit {
		return Payload{}, fmt.Errorf("%w: body exceeds %d bytes", ErrFileTooLarge, limit)
	}
	if len(data) == 0 {
		return Payload{}, fmt.Errorf("%w: empty file", ErrRead)
	}

	if Accepted(up.ContentType) {
		return Payload{Data: data, MIMEType: strings.TrimSpace(up.ContentType)}, nil
	}

	converted, err := n.toPNG(data)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Data: converted, MIMEType: "image/png"}, nil
}

func (n Normalizer) limit() int64 {
	if n.MaxBytes > 0 {
		return n.MaxBytes
	}
	return MaxUploadBytes
}

func (n Normalizer) pixelLimit() int {
	if n.MaxPixels > 0 {
		return n.MaxPixels
	}
	return MaxPixels
}

func (n Normalizer) toPNG(data []byte) ([]byte, error) {
	header, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if header.Width <= 0 || header.Height <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrEnvironment)
	}
	if int64(header.Width)*int64(header.Height) > int64(n.pixelLimit()) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, header.Width, header.Height, n.pixelLimit())
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrEnvironment)
	}

	surface := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(surface, surface.Bounds(), src, bounds.Min, draw.Src)

	encode := n.encode
	if encode == nil {
		encode = png.Encode
	}

	var buf bytes.Buffer
	if err := encode(&buf, surface); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvironment, err)
	}
	return buf.Bytes(), nil
}

func mediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return parsed
}
