// Package storage contains a simple on-disk store for counted k-mers. A Storage is a directory holding named groups,
// each group has a set of string properties and any number of partitions. A partition is split over several
// block-gzipped files of Count records.
package storage

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/will-rowe/kmerbank/src/misc"
)

// PropertiesFile is the name of the file holding the properties of a group
const PropertiesFile = "properties.toml"

// property names used by the counting stage
const (
	PropNbPartitions = "nb_partitions"
	PropKmerSize     = "kmer_size"
	PropMmerSize     = "mmer_size"
	PropMinAbundance = "min_abundance"
	PropNbSolid      = "nb_solid"
)

// Storage is a directory of groups
type Storage struct {
	dir    string
	groups map[string]*Group
	sync.Mutex
}

// Create makes a new storage directory, an existing storage at the same place is removed
func Create(dir string) (*Storage, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "could not create storage")
	}
	return &Storage{dir: dir, groups: make(map[string]*Group)}, nil
}

// Load opens an existing storage directory
func Load(dir string) (*Storage, error) {
	if err := misc.CheckDir(dir); err != nil {
		return nil, errors.Wrap(err, "could not load storage")
	}
	return &Storage{dir: dir, groups: make(map[string]*Group)}, nil
}

// Dir returns the storage directory
func (s *Storage) Dir() string {
	return s.dir
}

// Group returns the named group, creating it if needed
func (s *Storage) Group(name string) (*Group, error) {
	s.Lock()
	defer s.Unlock()
	if g, ok := s.groups[name]; ok {
		return g, nil
	}
	g := &Group{dir: filepath.Join(s.dir, name), name: name, properties: make(map[string]string)}
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "could not create group %v", name)
	}
	if err := g.load(); err != nil {
		return nil, err
	}
	s.groups[name] = g
	return g, nil
}

// Groups returns the names of the groups found in the storage directory
func (s *Storage) Groups() ([]string, error) {
	entries, err := ioutil.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the storage directory
func (s *Storage) Remove() error {
	return os.RemoveAll(s.dir)
}

// Group is a named set of properties and partitions
type Group struct {
	dir        string
	name       string
	properties map[string]string
	sync.RWMutex
}

// Name returns the group name
func (g *Group) Name() string {
	return g.name
}

// Dir returns the group directory
func (g *Group) Dir() string {
	return g.dir
}

func (g *Group) load() error {
	data, err := ioutil.ReadFile(filepath.Join(g.dir, PropertiesFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, &g.properties); err != nil {
		return errors.Wrapf(err, "could not read the properties of group %v", g.name)
	}
	return nil
}

// Save writes the properties to disk
func (g *Group) Save() error {
	g.RLock()
	data, err := toml.Marshal(g.properties)
	g.RUnlock()
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(g.dir, PropertiesFile), data, 0644)
}

// SetProperty sets a property, it is written to disk by Save
func (g *Group) SetProperty(key string, value interface{}) {
	g.Lock()
	g.properties[key] = fmt.Sprint(value)
	g.Unlock()
}

// GetProperty returns a property and if it is set
func (g *Group) GetProperty(key string) (string, bool) {
	g.RLock()
	defer g.RUnlock()
	value, ok := g.properties[key]
	return value, ok
}

// GetInt returns a property as an int
func (g *Group) GetInt(key string) (int, error) {
	value, ok := g.GetProperty(key)
	if !ok {
		return 0, errors.Errorf("property %v is not set in group %v", key, g.name)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "property %v of group %v is not an integer", key, g.name)
	}
	return n, nil
}

// Properties returns a copy of the properties
func (g *Group) Properties() map[string]string {
	g.RLock()
	defer g.RUnlock()
	props := make(map[string]string, len(g.properties))
	for k, v := range g.properties {
		props[k] = v
	}
	return props
}
