// Package store persists token deployments: the ledger and its authorizer
// captured together under a deployment name.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/govtoken/internal/access"
	"github.com/Mohsinsiddi/govtoken/internal/token"
)

// Errors.
var (
	ErrDeploymentNotFound = errors.New("deployment not found")
	ErrDeploymentExists   = errors.New("deployment already exists")
	ErrInvalidName        = errors.New("invalid deployment name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Deployment is one persisted token.
type Deployment struct {
	Name      string       `json:"name"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at,omitempty"`
	Token     token.State  `json:"token"`
	Access    access.State `json:"access"`
}

// Store is an interface for persisting deployments.
type Store interface {
	Load(name string) (*Deployment, error)
	Save(d *Deployment) error
	Create(d *Deployment) error
	List() ([]string, error)
	Remove(name string) error
}

// Capture builds a deployment record from live objects.
func Capture(name string, tok *token.Token) *Deployment {
	return &Deployment{
		Name:   name,
		Token:  tok.Snapshot(),
		Access: tok.Authorizer().Snapshot(),
	}
}

// Open rebuilds the authorizer and token held in d.
func Open(d *Deployment, log *slog.Logger, opts ...token.Option) (*token.Token, error) {
	auth, err := access.Restore(d.Access, log)
	if err != nil {
		return nil, fmt.Errorf("deployment %s: %w", d.Name, err)
	}
	opts = append([]token.Option{token.WithLogger(log)}, opts...)
	tok, err := token.Restore(d.Token, auth, opts...)
	if err != nil {
		return nil, fmt.Errorf("deployment %s: %w", d.Name, err)
	}
	return tok, nil
}

// ValidateName rejects names that are unsafe as file names.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func stamp(d *Deployment, creating bool) {
	now := time.Now().UTC().Format(time.RFC3339)
	if creating || d.CreatedAt == "" {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
}

// --- in-memory store ---

// MemStore keeps deployments in memory (useful for tests).
type MemStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Load(name string) (*Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeploymentNotFound, name)
	}
	return decode(raw)
}

func (s *MemStore) Save(d *Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[d.Name]; !ok {
		return fmt.Errorf("%w: %s", ErrDeploymentNotFound, d.Name)
	}
	return s.put(d, false)
}

func (s *MemStore) Create(d *Deployment) error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[d.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDeploymentExists, d.Name)
	}
	return s.put(d, true)
}

func (s *MemStore) put(d *Deployment, creating bool) error {
	stamp(d, creating)
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	s.data[d.Name] = raw
	return nil
}

func (s *MemStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data))
	for n := range s.data {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[name]; !ok {
		return fmt.Errorf("%w: %s", ErrDeploymentNotFound, name)
	}
	delete(s.data, name)
	return nil
}

// --- JSON file store ---

// JSONStore persists each deployment as <dir>/<name>.json.
type JSONStore struct {
	dir string
}

// NewJSONStore creates a JSON-backed store rooted at dir.
func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{dir: dir}
}

func (s *JSONStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *JSONStore) Load(name string) (*Deployment, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrDeploymentNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	d, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing deployment %s: %w", name, err)
	}
	return d, nil
}

func (s *JSONStore) Save(d *Deployment) error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if _, err := os.Stat(s.path(d.Name)); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrDeploymentNotFound, d.Name)
	}
	return s.write(d, false)
}

func (s *JSONStore) Create(d *Deployment) error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if _, err := os.Stat(s.path(d.Name)); err == nil {
		return fmt.Errorf("%w: %s", ErrDeploymentExists, d.Name)
	}
	return s.write(d, true)
}

// write goes through a temp file so a crash never leaves a torn record.
func (s *JSONStore) write(d *Deployment, creating bool) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	stamp(d, creating)
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path(d.Name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(d.Name))
}

func (s *JSONStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(out)
	return out, nil
}

func (s *JSONStore) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrDeploymentNotFound, name)
	}
	return err
}

func decode(raw []byte) (*Deployment, error) {
	var d Deployment
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
