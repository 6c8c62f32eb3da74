package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// configHomeDir returns the full path to the directory that stores config files.
func configHomeDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, MainDir), nil
}

// makeDir will make the given directory if it does not already exist.
func makeDir(dir string) error {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) { // if it doesn't exist...
		if err = os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory %v", dir)
		}
	} else if err != nil {
		return err
	}
	return nil
}

// setPath stores val in m under the dotted key, creating nested maps as required.
func setPath(m map[string]interface{}, key string, val interface{}) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}

// deletePath removes the dotted key from m and prunes any maps left empty.
// It returns false if the key was not found.
func deletePath(m map[string]interface{}, key string) bool {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) == 1 {
		if _, ok := m[key]; !ok {
			return false
		}
		delete(m, key)
		return true
	}
	next, ok := m[parts[0]].(map[string]interface{})
	if !ok {
		return false
	}
	found := deletePath(next, parts[1])
	if len(next) == 0 {
		delete(m, parts[0])
	}
	return found
}

// flatten converts nested maps to dotted keys.
func flatten(m map[string]interface{}) map[string]interface{} {
	retval := make(map[string]interface{})
	var walk func(prefix string, m map[string]interface{})
	walk = func(prefix string, m map[string]interface{}) {
		for k, v := range m {
			if child, ok := v.(map[string]interface{}); ok {
				walk(prefix+k+".", child)
			} else {
				retval[prefix+k] = v
			}
		}
	}
	walk("", m)
	return retval
}

// normaliseMap converts the map[interface{}]interface{} values produced by yaml.v2 to string keyed maps.
func normaliseMap(in map[interface{}]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if child, ok := v.(map[interface{}]interface{}); ok {
			out[fmt.Sprintf("%v", k)] = normaliseMap(child)
		} else {
			out[fmt.Sprintf("%v", k)] = v
		}
	}
	return out
}
