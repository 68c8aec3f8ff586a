package profile

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Store exposes profile retrieval.
type Store interface {
	List() []Profile
	FindByID(id string) (Profile, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Profile
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
func NewMemoryStore(items []Profile) *MemoryStore {
	return &MemoryStore{items: append([]Profile(nil), items...)}
}

// List returns the profiles in file order.
func (s *MemoryStore) List() []Profile {
	return append([]Profile(nil), s.items...)
}

// FindByID looks up a profile by identifier.
func (s *MemoryStore) FindByID(id string) (Profile, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Profile{}, false
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Parse decodes a YAML profile document. Profiles without an id are
// rejected, and later duplicates replace earlier ones.
func Parse(data []byte) ([]Profile, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "decode profiles")
	}

	var out []Profile
	index := make(map[string]int)
	for i, p := range file.Profiles {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, errors.Errorf("profile #%d has no id", i+1)
		}
		if p.Name == "" {
			p.Name = p.ID
		}
		if at, ok := index[p.ID]; ok {
			out[at] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	return out, nil
}

// LoadFile reads profiles from path and merges them over the seeds.
func LoadFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read profiles %s", path)
	}
	loaded, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse profiles %s", path)
	}
	return NewMemoryStore(merge(Seed(), loaded)), nil
}

func merge(base, overrides []Profile) []Profile {
	out := append([]Profile(nil), base...)
	for _, p := range overrides {
		replaced := false
		for i := range out {
			if out[i].ID == p.ID {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}
