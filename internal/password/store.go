package password

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

const stateVersion = 1

// Entry is one persisted password together with the policy it was
// generated under.
type Entry struct {
	Value     string    `yaml:"value"`
	Length    int       `yaml:"length"`
	Special   bool      `yaml:"special"`
	CreatedAt time.Time `yaml:"createdAt"`
}

type state struct {
	Version   int              `yaml:"version"`
	Passwords map[string]Entry `yaml:"passwords"`
}

// Store hands out stable passwords by logical name. It is safe for
// concurrent use.
type Store struct {
	backend Backend

	mu     sync.Mutex
	loaded bool
	state  state

	generate func(Policy) (string, error)
	now      func() time.Time
}

// NewStore returns a store persisting to backend.
func NewStore(backend Backend) *Store {
	return &Store{
		backend:  backend,
		generate: Generate,
		now:      time.Now,
	}
}

// GetOrGenerate returns the password stored under name. If there is none, a
// new one is generated under policy and written through to the backend
// before it is returned. A stored password is returned unchanged even when
// policy differs from the one it was generated with.
func (s *Store) GetOrGenerate(ctx context.Context, name string, policy Policy) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return "", err
	}

	logger := logf.FromContext(ctx).WithValues("password", name)

	if entry, ok := s.state.Passwords[name]; ok {
		if entry.Length != policy.Length || entry.Special != policy.Special {
			logger.V(1).Info("password policy changed, keeping stored value",
				"storedLength", entry.Length, "storedSpecial", entry.Special,
				"length", policy.Length, "special", policy.Special)
		}
		return entry.Value, nil
	}

	value, err := s.generate(policy)
	if err != nil {
		return "", fmt.Errorf("failed to generate password %s: %w", name, err)
	}

	s.state.Passwords[name] = Entry{
		Value:     value,
		Length:    policy.Length,
		Special:   policy.Special,
		CreatedAt: s.now().UTC(),
	}
	if err := s.save(ctx); err != nil {
		delete(s.state.Passwords, name)
		return "", err
	}

	logger.Info("generated password")
	return value, nil
}

// Get returns the stored password and whether it exists.
func (s *Store) Get(ctx context.Context, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return "", false, err
	}
	entry, ok := s.state.Passwords[name]
	return entry.Value, ok, nil
}

// Delete forgets a password. Deleting an unknown name is a no-op.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return err
	}
	entry, ok := s.state.Passwords[name]
	if !ok {
		return nil
	}

	delete(s.state.Passwords, name)
	if err := s.save(ctx); err != nil {
		s.state.Passwords[name] = entry
		return err
	}
	logf.FromContext(ctx).Info("deleted password", "password", name)
	return nil
}

// Names returns the stored names in sorted order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(s.state.Passwords))
	for name := range s.state.Passwords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	data, err := s.backend.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to load password state: %w", err)
	}

	st := state{Version: stateVersion}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &st); err != nil {
			return fmt.Errorf("failed to parse password state: %w", err)
		}
		if st.Version > stateVersion {
			return fmt.Errorf("unsupported password state version %d", st.Version)
		}
	}
	if st.Passwords == nil {
		st.Passwords = make(map[string]Entry)
	}

	s.state = st
	s.loaded = true
	return nil
}

func (s *Store) save(ctx context.Context) error {
	s.state.Version = stateVersion
	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("failed to encode password state: %w", err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to persist password state: %w", err)
	}
	return nil
}
