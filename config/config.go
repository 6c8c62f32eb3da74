package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	MainDir            = ".country-metrics"
	MainFileNamePrefix = "config"
	MainFileNameExt    = "yaml"
	MainFileFullName   = MainFileNamePrefix + "." + MainFileNameExt
)

// FileNotFoundError denotes failing to find configuration file.
type FileNotFoundError struct {
	name string
}

// Error returns the formatted configuration error.
func (f FileNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", f.name)
}

type KeyNotFoundError struct {
	configFile string
	key        string
}

func (k KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in config file %q", k.key, k.configFile)
}

// File is a YAML config file holding a nested Pipeline document.
// Keys are addressed with dotted paths, e.g. "store.host".
type File struct {
	FullPath     string
	data         map[string]interface{}
	dataIsLoaded bool
	mu           sync.Mutex
}

// NewFile returns a File at fullPath. Nothing is read until first use.
func NewFile(fullPath string) *File {
	return &File{FullPath: fullPath, data: make(map[string]interface{})}
}

// NewDefaultFile returns the File in the user's config home directory.
func NewDefaultFile() (*File, error) {
	dir, err := configHomeDir()
	if err != nil {
		return nil, err
	}
	return NewFile(filepath.Join(dir, MainFileFullName)), nil
}

// Get fetches the value at the dotted key.
func (c *File) Get(key string) (interface{}, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := flatten(c.data)[key]
	if !ok {
		return nil, KeyNotFoundError{c.FullPath, key}
	}
	return v, nil
}

// Set saves val at the dotted key, creating the file if required.
func (c *File) Set(key string, val interface{}) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	setPath(c.data, key, val)
	return c.save()
}

// Delete removes the dotted key from the file.
func (c *File) Delete(key string) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !deletePath(c.data, key) {
		return KeyNotFoundError{c.FullPath, key}
	}
	return c.save()
}

// GetAllKeys returns the sorted dotted keys present in the file.
func (c *File) GetAllKeys() ([]string, error) {
	values, err := c.Values()
	if err != nil {
		return nil, err
	}
	retval := make([]string, 0, len(values))
	for k := range values {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval, nil
}

// Values returns the file contents flattened to dotted keys.
func (c *File) Values() (map[string]interface{}, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return flatten(c.data), nil
}

// ensureLoaded reads the file once. A missing file is treated as empty.
func (c *File) ensureLoaded() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dataIsLoaded {
		return nil
	}
	err := c.loadData()
	if err != nil && !errors.As(err, &FileNotFoundError{}) {
		return err
	}
	c.dataIsLoaded = true
	return nil
}

func (c *File) loadData() error {
	b, err := os.ReadFile(c.FullPath)
	if os.IsNotExist(err) {
		return FileNotFoundError{c.FullPath}
	} else if err != nil {
		return errors.Wrapf(err, "unable to read config file %q", c.FullPath)
	}
	raw := make(map[interface{}]interface{})
	if err := yaml.Unmarshal(b, raw); err != nil {
		return errors.Wrapf(err, "unable to parse config file %q", c.FullPath)
	}
	c.data = normaliseMap(raw)
	return nil
}

func (c *File) save() error {
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("error marshalling data for config file %v: %v", c.FullPath, err)
	}
	if err := makeDir(filepath.Dir(c.FullPath)); err != nil {
		return err
	}
	if err := os.WriteFile(c.FullPath, b, 0600); err != nil {
		return errors.Wrapf(err, "unable to write config file %q", c.FullPath)
	}
	return nil
}

// Load builds the effective Pipeline from defaults, then the config file f (which may be nil),
// then any CM_* environment variables found via lookupEnv.
// Flags are applied by the caller afterwards and the result must then be validated.
func Load(f *File, lookupEnv func(string) (string, bool)) (*Pipeline, error) {
	p := NewPipeline()
	if f != nil {
		values, err := f.Values()
		if err != nil {
			return nil, err
		}
		if err := p.Apply(values); err != nil {
			return nil, errors.Wrapf(err, "config file %q", f.FullPath)
		}
	}
	if lookupEnv != nil {
		if err := p.Apply(EnvValues(lookupEnv)); err != nil {
			return nil, errors.Wrap(err, "environment")
		}
	}
	return p, nil
}
