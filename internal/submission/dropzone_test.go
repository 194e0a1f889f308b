package submission

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sizedFile reports an arbitrary size without holding the bytes.
type sizedFile struct {
	name        string
	contentType string
	size        int64
}

func (f sizedFile) Name() string        { return f.name }
func (f sizedFile) Size() int64         { return f.size }
func (f sizedFile) ContentType() string { return f.contentType }

func (f sizedFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestDropzone_VideoSizeCap(t *testing.T) {
	dz := NewDropzone(AssetVideo, VideoDropzone)

	rejected := dz.Drop(sizedFile{name: "demo.mp4", contentType: "video/mp4", size: VideoMaxBytes + 1})
	require.Len(t, rejected, 1)
	assert.Equal(t, RejectTooLarge, rejected[0].Reason)
	assert.Empty(t, dz.AcceptedFiles())

	rejected = dz.Drop(sizedFile{name: "demo.mp4", contentType: "video/mp4", size: VideoMaxBytes})
	assert.Empty(t, rejected)
	assert.Len(t, dz.AcceptedFiles(), 1)
}

func TestDropzone_SingleVideoOnly(t *testing.T) {
	dz := NewDropzone(AssetVideo, VideoDropzone)

	rejected := dz.Drop(
		sizedFile{name: "a.mp4", contentType: "video/mp4", size: 10},
		sizedFile{name: "b.mp4", contentType: "video/mp4", size: 10},
	)
	require.Len(t, rejected, 2)
	for _, r := range rejected {
		assert.Equal(t, RejectTooMany, r.Reason)
	}
	assert.Empty(t, dz.AcceptedFiles())
}

func TestDropzone_TypeFilter(t *testing.T) {
	dz := NewDropzone(AssetImage, ImageDropzone)

	rejected := dz.Drop(
		NewMemoryFile("a.jpg", "image/jpeg", []byte("jpeg")),
		NewMemoryFile("notes.txt", "text/plain", []byte("hello world")),
		NewMemoryFile("b.webp", "", []byte("webp")),
		NewMemoryFile("c.JPG", "image/jpg", []byte("jpeg")),
	)

	require.Len(t, rejected, 1)
	assert.Equal(t, "notes.txt", rejected[0].File.Name())
	assert.Equal(t, RejectInvalidType, rejected[0].Reason)
	assert.Contains(t, rejected[0].Message, "image/jpeg, image/png, image/webp")

	names := make([]string, 0)
	for _, f := range dz.AcceptedFiles() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"a.jpg", "b.webp", "c.JPG"}, names)
}

func TestDropzone_SniffsContentWhenUndeclared(t *testing.T) {
	dz := NewDropzone(AssetImage, ImageDropzone)

	rejected := dz.Drop(NewMemoryFile("upload", "application/octet-stream", pngHeader))
	assert.Empty(t, rejected)
	assert.Len(t, dz.AcceptedFiles(), 1)

	rejected = dz.Drop(NewMemoryFile("upload", "", []byte("plain text, not an image")))
	require.Len(t, rejected, 1)
	assert.Equal(t, RejectInvalidType, rejected[0].Reason)
}

func TestDropzone_DeclaredTypeWinsOverContent(t *testing.T) {
	dz := NewDropzone(AssetImage, ImageDropzone)

	rejected := dz.Drop(NewMemoryFile("notes.txt", "text/plain", pngHeader))

	require.Len(t, rejected, 1)
	assert.Equal(t, "notes.txt", rejected[0].File.Name())
	assert.Equal(t, RejectInvalidType, rejected[0].Reason)
	assert.Empty(t, dz.AcceptedFiles())
}

func TestDropzone_DropReplacesList(t *testing.T) {
	dz := NewDropzone(AssetImage, ImageDropzone)
	var seen [][]AssetFile
	dz.OnChange(func(files []AssetFile) { seen = append(seen, files) })

	dz.Drop(NewMemoryFile("a.png", "image/png", pngHeader), NewMemoryFile("b.png", "image/png", pngHeader))
	dz.Drop(NewMemoryFile("c.png", "image/png", pngHeader))

	accepted := dz.AcceptedFiles()
	require.Len(t, accepted, 1)
	assert.Equal(t, "c.png", accepted[0].Name())
	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 2)
	assert.Len(t, seen[1], 1)
}

func TestNormalizeMIME(t *testing.T) {
	cases := map[string]string{
		"image/JPEG":               "image/jpeg",
		"image/pjpeg":              "image/jpeg",
		"video/x-matroska":         "video/mkv",
		"video/mp4; codecs=avc1":   "video/mp4",
		"application/octet-stream": "",
		"":                         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeMIME(in), in)
	}
}
