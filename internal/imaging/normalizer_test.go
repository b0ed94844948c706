package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"runtime"
	"strings"
	"testing"
)

type failingReader struct{ t *testing.T }

func (r failingReader) Read([]byte) (int, error) {
	r.t.Fatal("body must not be read")
	return 0, nil
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestNormalizeRejectsOversizeWithoutReading(t *testing.T) {
	_, err := Normalizer{}.Normalize(Upload{
		ContentType: "image/png",
		Size:        MaxUploadBytes + 1,
		Body:        failingReader{t},
	})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestNormalizeRejectsBodyLargerThanDeclared(t *testing.T) {
	_, err := Normalizer{MaxBytes: 16}.Normalize(Upload{
		ContentType: "image/png",
		Size:        4,
		Body:        bytes.NewReader(make([]byte, 32)),
	})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestNormalizePassesThroughAcceptedTypes(t *testing.T) {
	raw := []byte("opaque bytes the model will decode")
	for _, ct := range []string{"image/png", "image/jpeg", "image/webp", "image/heic", "image/heif"} {
		t.Run(ct, func(t *testing.T) {
			got, err := Normalizer{}.Normalize(Upload{
				ContentType: ct,
				Size:        int64(len(raw)),
				Body:        bytes.NewReader(raw),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.MIMEType != ct {
				t.Errorf("mime = %q, want %q", got.MIMEType, ct)
			}
			if !bytes.Equal(got.Data, raw) {
				t.Errorf("payload was modified")
			}
		})
	}
}

func TestNormalizeTranscodesGIF(t *testing.T) {
	src := image.NewPaletted(image.Rect(0, 0, 3, 2), []color.Color{color.Black, color.White})
	src.SetColorIndex(1, 1, 1)
	var buf bytes.Buffer
	if err := gif.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}

	got, err := Normalizer{}.Normalize(Upload{
		Filename:    "dish.gif",
		ContentType: "image/gif",
		Size:        int64(buf.Len()),
		Body:        &buf,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MIMEType != "image/png" {
		t.Fatalf("mime = %q", got.MIMEType)
	}

	decoded, err := png.Decode(bytes.NewReader(got.Data))
	if err != nil {
		t.Fatalf("output is not png: %v", err)
	}
	if decoded.Bounds().Dx() != 3 || decoded.Bounds().Dy() != 2 {
		t.Errorf("bounds = %v", decoded.Bounds())
	}
	if got.Base64() == "" {
		t.Error("empty base64")
	}
}

func TestNormalizeDecodeFailure(t *testing.T) {
	body := "definitely not an image"
	_, err := Normalizer{}.Normalize(Upload{
		ContentType: "text/plain",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestNormalizeReadFailure(t *testing.T) {
	_, err := Normalizer{}.Normalize(Upload{ContentType: "image/png", Size: 10, Body: brokenReader{}})
	if !errors.Is(err, ErrRead) {
		t.Fatalf("expected ErrRead, got %v", err)
	}
}

func TestAcceptedIgnoresParameters(t *testing.T) {
	if !Accepted("IMAGE/JPEG; q=0.9") {
		t.Error("jpeg with parameters should be accepted")
	}
	if Accepted("image/gif") {
		t.Error("gif must be transcoded")
	}
}

// bmpHeader is a 24-bit BMP file and info header with no pixel data.
func bmpHeader(width, height int32) []byte {
	var buf bytes.Buffer
	buf.WriteString("BM")
	binary.Write(&buf, binary.LittleEndian, uint32(54))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(54))
	binary.Write(&buf, binary.LittleEndian, uint32(40))
	binary.Write(&buf, binary.LittleEndian, width)
	binary.Write(&buf, binary.LittleEndian, height)
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(24))
	buf.Write(make([]byte, 24))
	return buf.Bytes()
}

func TestNormalizeRejectsHugeDimensionsBeforeDecoding(t *testing.T) {
	header := bmpHeader(12000, 12000)
	if len(header) != 54 {
		t.Fatalf("header length = %d", len(header))
	}

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	_, err := Normalizer{}.Normalize(Upload{
		ContentType: "image/bmp",
		Size:        int64(len(header)),
		Body:        bytes.NewReader(header),
	})

	runtime.ReadMemStats(&after)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if !strings.Contains(err.Error(), "12000x12000") {
		t.Errorf("error does not name the dimensions: %v", err)
	}
	if grown := after.TotalAlloc - before.TotalAlloc; grown > 16<<20 {
		t.Fatalf("allocated %d bytes for a %d byte upload", grown, len(header))
	}
}

func TestNormalizePixelBudgetOverride(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	if err := gif.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}

	_, err := Normalizer{MaxPixels: 99}.Normalize(Upload{ContentType: "image/gif", Size: int64(buf.Len()), Body: &buf})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestNormalizeKeepsExactDeclaredType(t *testing.T) {
	raw := []byte("jpeg bytes")
	got, err := Normalizer{}.Normalize(Upload{ContentType: " image/JPEG ", Size: int64(len(raw)), Body: bytes.NewReader(raw)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MIMEType != "image/JPEG" {
		t.Fatalf("mime = %q", got.MIMEType)
	}
}

func TestNormalizeEncoderFailureIsEnvironmentError(t *testing.T) {
	src := image.NewPaletted(image.Rect(0, 0, 2, 2), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}

	n := Normalizer{encode: func(io.Writer, image.Image) error { return errors.New("no raster surface") }}
	_, err := n.Normalize(Upload{ContentType: "image/gif", Size: int64(buf.Len()), Body: &buf})
	if !errors.Is(err, ErrEnvironment) {
		t.Fatalf("expected ErrEnvironment, got %v", err)
	}
}
