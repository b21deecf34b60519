package auth

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/ehubscan/pkg/browser"
	"github.com/entrhq/ehubscan/pkg/logging"
)

const (
	cookieFileName   = "session.gob"
	metadataFileName = "metadata.json"

	// DefaultSessionsDir is where session artifacts live unless overridden.
	DefaultSessionsDir = "data/sessions"
)

// Store persists per-identity session artifacts on disk. Each identity
// owns a subdirectory (filesystem-safe transform of the identity) holding
// a gob-encoded cookie blob and a JSON metadata record. The store owns
// every byte under its base directory.
type Store struct {
	baseDir string
	domain  string
	log     *logging.Logger
	now     func() time.Time
}

// NewStore creates a store rooted at baseDir. domain is the portal root
// the store navigates to before replaying cookies.
func NewStore(baseDir, domain string, log *logging.Logger) *Store {
	if baseDir == "" {
		baseDir = DefaultSessionsDir
	}
	return &Store{
		baseDir: baseDir,
		domain:  domain,
		log:     log,
		now:     time.Now,
	}
}

// sanitizeIdentity turns an email-like identity into a directory name.
func sanitizeIdentity(identity string) string {
	s := strings.ToLower(identity)
	s = strings.ReplaceAll(s, "@", "_at_")
	s = strings.ReplaceAll(s, ".", "_dot_")
	return s
}

// IdentityDir returns the directory holding an identity's artifacts.
func (s *Store) IdentityDir(identity string) string {
	return filepath.Join(s.baseDir, sanitizeIdentity(identity))
}

func (s *Store) cookiePath(identity string) string {
	return filepath.Join(s.IdentityDir(identity), cookieFileName)
}

func (s *Store) metadataPath(identity string) string {
	return filepath.Join(s.IdentityDir(identity), metadataFileName)
}

// Save reads all cookies from the live session and persists them for the
// identity, archiving any existing cookie blob under a timestamped name
// so exactly one current artifact remains.
func (s *Store) Save(session browser.Session, identity string) (*SessionRecord, error) {
	cookies, err := session.Cookies()
	if err != nil {
		return nil, fmt.Errorf("failed to read session cookies: %w", err)
	}

	dir := s.IdentityDir(identity)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	cookiePath := s.cookiePath(identity)
	if _, err := os.Stat(cookiePath); err == nil {
		archive := filepath.Join(dir, fmt.Sprintf("session_%s.gob", s.now().Format("20060102_150405")))
		if err := os.Rename(cookiePath, archive); err != nil {
			return nil, fmt.Errorf("failed to archive previous session: %w", err)
		}
		s.log.Infof("archived previous session to %s", archive)
	}

	if err := writeCookies(cookiePath, cookies); err != nil {
		return nil, err
	}

	now := s.now()
	record := &SessionRecord{
		Identity:  identity,
		DerivedID: DeriveSessionID(identity),
		CreatedAt: now,
		LastUsed:  now,
		ExpiresAt: now.Add(sessionTTL),
	}
	if err := s.writeMetadata(identity, record); err != nil {
		return nil, err
	}

	s.log.Infof("session saved for %s at %s", identity, cookiePath)
	return record, nil
}

// Load restores a stored session into the live browsing session. It fails
// closed: missing or corrupt artifacts, and expired records, all yield
// (nil, false). Expired records are invalidated before returning. On
// success the stored cookies are replayed one by one (a rejected cookie
// is skipped, never fatal), the page is reloaded so they take effect, and
// the record's last-used timestamp is bumped.
func (s *Store) Load(session browser.Session, identity string) (*SessionRecord, bool) {
	record, err := s.readMetadata(identity)
	if err != nil {
		s.log.Infof("no usable session for %s: %v", identity, err)
		return nil, false
	}

	if record.Expired(s.now()) {
		s.log.Infof("session expired for %s (expired %s)", identity, record.ExpiresAt.Format(time.RFC3339))
		s.Invalidate(identity)
		return nil, false
	}

	cookies, err := readCookies(s.cookiePath(identity))
	if err != nil {
		s.log.Warnf("failed to read cookie blob for %s: %v", identity, err)
		return nil, false
	}

	if err := session.Navigate(s.domain); err != nil {
		s.log.Warnf("failed to reach %s before cookie replay: %v", s.domain, err)
		return nil, false
	}

	replayed := 0
	for _, cookie := range cookies {
		if err := session.AddCookie(cookie); err != nil {
			s.log.Debugf("skipped cookie %s: %v", cookie.Name, err)
			continue
		}
		replayed++
	}
	s.log.Debugf("replayed %d/%d cookies for %s", replayed, len(cookies), identity)

	if err := session.Reload(); err != nil {
		s.log.Warnf("reload after cookie replay failed: %v", err)
		return nil, false
	}

	record.LastUsed = s.now()
	if err := s.writeMetadata(identity, record); err != nil {
		s.log.Warnf("failed to update last-used timestamp for %s: %v", identity, err)
	}

	s.log.Infof("session loaded for %s", identity)
	return record, true
}

// Invalidate removes the identity's current artifacts and its directory
// if that leaves it empty. Best effort: absent artifacts are fine; only
// an unexpected I/O failure returns false.
func (s *Store) Invalidate(identity string) bool {
	ok := true
	for _, path := range []string{s.cookiePath(identity), s.metadataPath(identity)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Errorf("failed to remove %s: %v", path, err)
			ok = false
		}
	}

	dir := s.IdentityDir(identity)
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if err := os.Remove(dir); err != nil {
			s.log.Debugf("could not remove session directory %s: %v", dir, err)
		}
	}

	if ok {
		s.log.Infof("session cleared for %s", identity)
	}
	return ok
}

// List returns every parseable metadata record across all identity
// directories. Unparseable or missing metadata is skipped silently.
func (s *Store) List() []SessionRecord {
	var records []SessionRecord

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return records
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), metadataFileName))
		if err != nil {
			continue
		}
		var record SessionRecord
		if err := json.Unmarshal(data, &record); err != nil {
			s.log.Debugf("skipping unparseable metadata in %s: %v", entry.Name(), err)
			continue
		}
		records = append(records, record)
	}
	return records
}

func (s *Store) readMetadata(identity string) (*SessionRecord, error) {
	if _, err := os.Stat(s.cookiePath(identity)); err != nil {
		return nil, fmt.Errorf("cookie blob missing: %w", err)
	}
	data, err := os.ReadFile(s.metadataPath(identity))
	if err != nil {
		return nil, fmt.Errorf("metadata missing: %w", err)
	}
	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("metadata unparseable: %w", err)
	}
	return &record, nil
}

func (s *Store) writeMetadata(identity string, record *SessionRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session metadata: %w", err)
	}
	if err := os.WriteFile(s.metadataPath(identity), data, 0600); err != nil {
		return fmt.Errorf("failed to write session metadata: %w", err)
	}
	return nil
}

func writeCookies(path string, cookies []browser.Cookie) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create cookie blob: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(cookies); err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}
	return nil
}

func readCookies(path string) ([]browser.Cookie, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cookies []browser.Cookie
	if err := gob.NewDecoder(file).Decode(&cookies); err != nil {
		return nil, fmt.Errorf("failed to decode cookie blob: %w", err)
	}
	return cookies, nil
}
