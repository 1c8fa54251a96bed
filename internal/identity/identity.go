// Package identity generates the pseudonymous identity of one installation
// and keeps it in a local storage slot across runs.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/google/uuid"
)

var (
	palette    = []string{"#ef4444", "#f59e0b", "#10b981", "#3b82f6", "#6366f1", "#8b5cf6", "#ec4899"}
	adjectives = []string{"Cool", "Swift", "Bright", "Lively", "Epic", "Neon", "Bold"}
	nouns      = []string{"Panda", "Eagle", "Fox", "Tiger", "Nova", "Storm", "Zenith"}
)

// Palette returns the colors an identity can be assigned.
func Palette() []string {
	return append([]string(nil), palette...)
}

// Storage is a single key-value slot holding the serialized identity. Load
// returns an error wrapping fs.ErrNotExist when the slot is empty.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Provider hands out the installation's identity. Construct one at startup
// and pass it to whatever needs the current user.
type Provider struct {
	mu      sync.Mutex
	storage Storage
	current *models.Identity
	newID   func() string
	intN    func(n int) int
	logger  *slog.Logger
}

// Option configures a Provider
type Option func(*Provider)

// WithLogger sets the logger used to report storage problems.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// WithRandom replaces the id generator and the integer source used to pick
// names and colors.
func WithRandom(newID func() string, intN func(n int) int) Option {
	return func(p *Provider) {
		if newID != nil {
			p.newID = newID
		}
		if intN != nil {
			p.intN = intN
		}
	}
}

// NewProvider creates a Provider over storage. A nil storage keeps the
// identity in memory only.
func NewProvider(storage Storage, opts ...Option) *Provider {
	p := &Provider{
		storage: storage,
		newID:   uuid.NewString,
		intN:    rand.IntN,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetOrCreate returns the stored identity, generating and persisting one on
// first use. Storage failures are logged and the identity lives in memory
// for the rest of the process.
func (p *Provider) GetOrCreate() models.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		return *p.current
	}
	if id, ok := p.load(); ok {
		p.current = &id
		return id
	}
	id := p.generate()
	p.save(id)
	p.current = &id
	return id
}

// Reset discards the current identity and generates a new one.
func (p *Provider) Reset() models.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.generate()
	p.save(id)
	p.current = &id
	p.logger.Info("identity reset", "user_id", id.ID, "display_name", id.DisplayName)
	return id
}

func (p *Provider) load() (models.Identity, bool) {
	if p.storage == nil {
		return models.Identity{}, false
	}
	data, err := p.storage.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return models.Identity{}, false
	}
	if err != nil {
		p.logger.Warn("identity storage unavailable, using a session identity", "error", err)
		p.storage = nil
		return models.Identity{}, false
	}

	var id models.Identity
	if err := json.Unmarshal(data, &id); err != nil || id.ID == "" || id.DisplayName == "" || id.Color == "" {
		p.logger.Warn("stored identity is unreadable, generating a new one", "error", err)
		return models.Identity{}, false
	}
	return id, true
}

func (p *Provider) save(id models.Identity) {
	if p.storage == nil {
		return
	}
	data, err := json.Marshal(id)
	if err != nil {
		return
	}
	if err := p.storage.Save(data); err != nil {
		p.logger.Warn("identity storage unavailable, using a session identity", "error", err)
		p.storage = nil
	}
}

func (p *Provider) generate() models.Identity {
	return models.Identity{
		ID:          p.newID(),
		DisplayName: fmt.Sprintf("%s %s %d", adjectives[p.intN(len(adjectives))], nouns[p.intN(len(nouns))], p.intN(999)),
		Color:       palette[p.intN(len(palette))],
	}
}
