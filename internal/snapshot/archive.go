package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Screen identifies which app screen a capture came from.
type Screen string

const (
	ScreenList      Screen = "list"
	ScreenSecondary Screen = "secondary"
	ScreenDetail    Screen = "detail"
)

// Snapshot is one archived UI hierarchy capture. Tokens are stored alongside
// the raw source so archived pages replay through the extractors without
// re-tokenizing.
type Snapshot struct {
	SessionID  string    `msgpack:"session_id"`
	Screen     Screen    `msgpack:"screen"`
	PrimaryRef string    `msgpack:"primary_ref"` // Session id, MJB or MJR depending on screen
	Stage      string    `msgpack:"stage"`       // e.g. "initial", "scroll_01"
	CapturedAt time.Time `msgpack:"captured_at"`
	Source     string    `msgpack:"source"`
	Tokens     []string  `msgpack:"tokens"`
	Descs      []string  `msgpack:"descs"`
}

// Archive persists snapshots as msgpack files under a root directory,
// grouped by primary reference:
//
//	<root>/<primary_ref>/<screen>_<stage>_<timestamp>.msgpack
type Archive struct {
	root string
	log  zerolog.Logger
}

// NewArchive creates the archive root if needed.
func NewArchive(root string, log zerolog.Logger) (*Archive, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot archive directory: %w", err)
	}
	return &Archive{
		root: root,
		log:  log.With().Str("component", "snapshot-archive").Logger(),
	}, nil
}

// Capture tokenizes source and archives it in one step.
func (a *Archive) Capture(sessionID string, screen Screen, primaryRef, stage, source string) (*Snapshot, error) {
	snap := &Snapshot{
		SessionID:  sessionID,
		Screen:     screen,
		PrimaryRef: primaryRef,
		Stage:      stage,
		CapturedAt: time.Now().UTC(),
		Source:     source,
		Tokens:     Tokens(source),
		Descs:      Descs(source),
	}
	if err := a.Save(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save writes a snapshot to the archive.
func (a *Archive) Save(snap *Snapshot) error {
	if snap.Source == "" {
		return fmt.Errorf("refusing to archive empty page source for %s/%s", snap.Screen, snap.PrimaryRef)
	}

	dir := filepath.Join(a.root, sanitizeRef(snap.PrimaryRef))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.msgpack",
		snap.Screen, snap.Stage, snap.CapturedAt.Format("20060102_150405.000000000"))
	path := filepath.Join(dir, name)

	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	a.log.Debug().
		Str("screen", string(snap.Screen)).
		Str("ref", snap.PrimaryRef).
		Str("path", path).
		Int("tokens", len(snap.Tokens)).
		Msg("Archived snapshot")
	return nil
}

// List returns the archived snapshot paths for one primary reference,
// oldest first.
func (a *Archive) List(primaryRef string) ([]string, error) {
	dir := filepath.Join(a.root, sanitizeRef(primaryRef))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".msgpack") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads one archived snapshot back.
func (a *Archive) Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// sanitizeRef keeps archive paths flat and filesystem-safe.
func sanitizeRef(ref string) string {
	if ref == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, ref)
}
