package submission

import (
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// VideoMaxBytes caps a challenge video.
const VideoMaxBytes int64 = 10_000_000

// DropzoneConfig constrains what a dropzone accepts.
type DropzoneConfig struct {
	// Accept maps MIME types to the file extensions that imply them.
	Accept   map[string][]string `json:"accept"`
	Multiple bool                `json:"multiple"`
	// MaxSize is an inclusive byte cap; zero disables it.
	MaxSize int64 `json:"max_size,omitempty"`
}

var (
	ImageDropzone = DropzoneConfig{
		Accept: map[string][]string{
			"image/jpeg": {".jpg", ".jpeg"},
			"image/png":  {".png"},
			"image/webp": {".webp"},
		},
		Multiple: true,
	}
	VideoDropzone = DropzoneConfig{
		Accept: map[string][]string{
			"video/mp4": {".mp4"},
			"video/mkv": {".mkv"},
		},
		Multiple: false,
		MaxSize:  VideoMaxBytes,
	}
)

// ConfigFor returns the preset for an asset class.
func ConfigFor(class AssetClass) DropzoneConfig {
	if class == AssetVideo {
		return VideoDropzone
	}
	return ImageDropzone
}

// RejectReason mirrors the codes browsers report for dropped files.
type RejectReason string

const (
	RejectInvalidType RejectReason = "file-invalid-type"
	RejectTooLarge    RejectReason = "file-too-large"
	RejectTooMany     RejectReason = "too-many-files"
)

// Rejection describes a file the dropzone refused.
type Rejection struct {
	File    AssetFile
	Reason  RejectReason
	Message string
}

// Dropzone filters picked files and keeps the accepted list for one asset class.
type Dropzone struct {
	class AssetClass
	cfg   DropzoneConfig

	mu        sync.Mutex
	accepted  []AssetFile
	listeners []func([]AssetFile)
}

func NewDropzone(class AssetClass, cfg DropzoneConfig) *Dropzone {
	return &Dropzone{class: class, cfg: cfg}
}

func (d *Dropzone) Class() AssetClass      { return d.class }
func (d *Dropzone) Config() DropzoneConfig { return d.cfg }

// Drop replaces the accepted list with the files that pass the filter.
// Refused files are returned and never enter the accepted list.
func (d *Dropzone) Drop(files ...AssetFile) []Rejection {
	accepted, rejected := d.filter(files)

	d.mu.Lock()
	d.accepted = accepted
	snapshot := append([]AssetFile(nil), accepted...)
	listeners := slices.Clone(d.listeners)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
	return rejected
}

// AcceptedFiles returns a copy of the accepted list.
func (d *Dropzone) AcceptedFiles() []AssetFile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]AssetFile(nil), d.accepted...)
}

// OnChange registers fn to run after every Drop with the new accepted list.
func (d *Dropzone) OnChange(fn func([]AssetFile)) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

func (d *Dropzone) filter(files []AssetFile) ([]AssetFile, []Rejection) {
	if !d.cfg.Multiple && len(files) > 1 {
		rejected := make([]Rejection, 0, len(files))
		for _, f := range files {
			rejected = append(rejected, Rejection{File: f, Reason: RejectTooMany, Message: "Too many files"})
		}
		return nil, rejected
	}

	var (
		accepted []AssetFile
		rejected []Rejection
	)
	for _, f := range files {
		if !d.acceptsType(f) {
			rejected = append(rejected, Rejection{
				File:    f,
				Reason:  RejectInvalidType,
				Message: fmt.Sprintf("File type must be one of %s", strings.Join(d.acceptList(), ", ")),
			})
			continue
		}
		if d.cfg.MaxSize > 0 && f.Size() > d.cfg.MaxSize {
			rejected = append(rejected, Rejection{
				File:    f,
				Reason:  RejectTooLarge,
				Message: fmt.Sprintf("File is larger than %d bytes", d.cfg.MaxSize),
			})
			continue
		}
		accepted = append(accepted, f)
	}
	return accepted, rejected
}

// acceptsType matches the declared type or the extension. Content is sniffed
// only for files that declare no type.
func (d *Dropzone) acceptsType(f AssetFile) bool {
	declared := normalizeMIME(f.ContentType())
	if declared != "" {
		if _, ok := d.cfg.Accept[declared]; ok {
			return true
		}
	}

	ext := strings.ToLower(filepath.Ext(f.Name()))
	for _, exts := range d.cfg.Accept {
		for _, e := range exts {
			if ext != "" && ext == e {
				return true
			}
		}
	}

	if declared != "" {
		return false
	}

	r, err := f.Open()
	if err != nil {
		return false
	}
	defer r.Close()
	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return false
	}
	for m := detected; m != nil; m = m.Parent() {
		if _, ok := d.cfg.Accept[normalizeMIME(m.String())]; ok {
			return true
		}
	}
	return false
}

func (d *Dropzone) acceptList() []string {
	out := make([]string, 0, len(d.cfg.Accept))
	for t := range d.cfg.Accept {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

var mimeAliases = map[string]string{
	"image/jpg":        "image/jpeg",
	"image/pjpeg":      "image/jpeg",
	"video/x-matroska": "video/mkv",
}

func normalizeMIME(raw string) string {
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		mediaType = raw
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if alias, ok := mimeAliases[mediaType]; ok {
		return alias
	}
	if mediaType == "application/octet-stream" {
		return ""
	}
	return mediaType
}
