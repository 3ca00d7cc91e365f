package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// AttachmentKind distinguishes the diagnostic file types the recorder captures.
type AttachmentKind string

const (
	AttachmentScreenshot AttachmentKind = "screenshot"
	AttachmentPageSource AttachmentKind = "page-source"
)

// Attachment is one diagnostic file saved at failure time. The file exists on
// disk iff capture succeeded.
type Attachment struct {
	Kind     AttachmentKind
	Path     string
	Captured time.Time
}

// Store writes diagnostic attachments under a single directory with unique names.
type Store struct {
	dir string
}

// NewStore creates the attachments directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create attachments directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the attachments directory path.
func (s *Store) Dir() string { return s.dir }

// Save writes one attachment. The file name embeds the session ID, the kind, and
// a generated unique suffix so parallel runs never collide.
func (s *Store) Save(sessionID string, kind AttachmentKind, data []byte) (Attachment, error) {
	ext := ".txt"
	if kind == AttachmentScreenshot {
		ext = ".png"
	}
	name := fmt.Sprintf("%s-%s-%s%s", sessionID, kind, uuid.NewString()[:8], ext)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return Attachment{}, fmt.Errorf("cannot write %s attachment: %w", kind, err)
	}
	return Attachment{Kind: kind, Path: path, Captured: time.Now()}, nil
}
