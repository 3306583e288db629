package mailer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Outbox writes every message as an .eml file into a directory. It is meant
// for development, where no SMTP relay is available.
type Outbox struct {
	dir  string
	from string
	now  func() time.Time
}

// NewOutbox creates the directory if needed and returns an Outbox sender.
func NewOutbox(dir, from string) (*Outbox, error) {
	if dir == "" {
		return nil, fmt.Errorf("mailer: outbox dir is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("mailer: resolve outbox: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("mailer: mkdir outbox: %w", err)
	}
	if from == "" {
		from = "jobtrackr@localhost"
	}
	return &Outbox{dir: abs, from: from, now: time.Now}, nil
}

// Dir returns the absolute outbox directory.
func (o *Outbox) Dir() string { return o.dir }

// Send implements Sender. The file appears atomically: tmp file, fsync, rename.
func (o *Outbox) Send(_ context.Context, msg Message) error {
	m, err := buildMsg(o.from, msg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(o.dir, ".outbox-tmp-*")
	if err != nil {
		return fmt.Errorf("mailer: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := m.WriteTo(tmp); err != nil {
		return fmt.Errorf("mailer: write message: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("mailer: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("mailer: close temp: %w", err)
	}

	name := fmt.Sprintf("%s-%s.eml", o.now().UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
	if err := os.Rename(tmpName, filepath.Join(o.dir, name)); err != nil {
		return fmt.Errorf("mailer: rename: %w", err)
	}
	success = true
	return nil
}
