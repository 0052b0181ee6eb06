// Package img produces image bundles: a uniform handle over an image
// that renders either inline (data URI) or as a MIME attachment
// (content-ID reference), regardless of whether the image originates
// from a file on disk or an in-memory buffer.
package img

import (
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Mode selects how a bundle's image reaches the final document.
type Mode int

const (
	// Inline embeds the image bytes directly in markup as a data URI.
	Inline Mode = iota
	// Attachment references the image by content id; the bytes travel
	// as a separate MIME part.
	Attachment
)

// ParseMode converts a config/flag string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "inline":
		return Inline, nil
	case "attachment":
		return Attachment, nil
	}
	return 0, fmt.Errorf("unknown render mode %q (want inline or attachment)", s)
}

// ByteSource is a reference to image bytes the email transport can
// resolve when assembling MIME parts.
type ByteSource interface {
	Bytes() ([]byte, error)
}

// FileSource references image bytes at a filesystem path.
type FileSource string

func (f FileSource) Bytes() ([]byte, error) {
	return os.ReadFile(string(f))
}

// BufferSource is an in-memory image buffer.
type BufferSource []byte

func (b BufferSource) Bytes() ([]byte, error) {
	return []byte(b), nil
}

// EncodeFunc turns raw image bytes into an inline display source.
// Injectable so tests can substitute a stable encoding.
type EncodeFunc func([]byte) string

// DataURI is the default inline encoding.
func DataURI(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

// Options tune bundle creation. The zero value is usable.
type Options struct {
	// Encode overrides the inline encoding (default DataURI).
	Encode EncodeFunc
	// TempDir overrides where attachment buffers are persisted.
	TempDir string
}

func (o Options) encode(data []byte) string {
	if o.Encode != nil {
		return o.Encode(data)
	}
	return DataURI(data)
}

// Bundle is the uniform image handle the renderers embed in fragments.
// Attachment bundles carry a ContentID and a resolvable Source; inline
// bundles carry the full image in DisplaySrc and nothing else.
type Bundle struct {
	Mode       Mode
	DisplaySrc string
	ContentID  string
	Source     ByteSource
}

// New creates a bundle for the given mode and source.
func New(mode Mode, src ByteSource, opts Options) (Bundle, error) {
	data, err := src.Bytes()
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to resolve image bytes: %w", err)
	}

	if mode == Inline {
		return Bundle{Mode: Inline, DisplaySrc: opts.encode(data)}, nil
	}

	id := contentID(data)
	source := src
	if _, buffered := src.(BufferSource); buffered {
		// The transport reads attachments later, possibly from another
		// process step, so buffers are persisted to a scoped temp file.
		path, err := persistBuffer(data, opts.TempDir)
		if err != nil {
			return Bundle{}, err
		}
		source = FileSource(path)
	}

	return Bundle{
		Mode:       Attachment,
		DisplaySrc: "cid:" + id,
		ContentID:  id,
		Source:     source,
	}, nil
}

// AttachmentEntry returns the content-id keyed attachment mapping for
// this bundle: exactly one entry in attachment mode, nil inline.
func (b Bundle) AttachmentEntry() map[string]ByteSource {
	if b.Mode != Attachment {
		return nil
	}
	return map[string]ByteSource{b.ContentID: b.Source}
}

// contentID hashes image bytes into a short stable identifier so
// identical imagery deduplicates across attachments within one email.
func contentID(data []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(data)
	return fmt.Sprintf("%d_cardsnap", h.Sum32())
}

var (
	tempOnce sync.Once
	tempDir  string
	tempErr  error
)

// persistBuffer writes data to a file in a process-scoped temp
// directory, removed by Cleanup.
func persistBuffer(data []byte, dir string) (string, error) {
	if dir == "" {
		tempOnce.Do(func() {
			tempDir, tempErr = os.MkdirTemp("", "cardsnap-attachments-")
		})
		if tempErr != nil {
			return "", fmt.Errorf("failed to create attachment dir: %w", tempErr)
		}
		dir = tempDir
	}

	path := filepath.Join(dir, uuid.NewString()+".png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to persist attachment: %w", err)
	}
	return path, nil
}

// Cleanup removes the process-scoped attachment directory. Callers
// invoke it once, after all rendered output has been delivered.
func Cleanup() {
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}
}
