// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package backend provides the registry of builtin numeric backends and a
// loader for backend modules.
//
// Builtin backends register themselves by name from an init function:
//
//	func init() {
//		backend.Register("ideal", Open)
//	}
//
// Other modules are Go plugins named <module>.so, found in a search path.
//
package backend

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/db47h/xbar"
	"github.com/pkg/errors"
)

// OpenFunc opens a backend for a crossbar of the given dimensions.
//
type OpenFunc func(dims xbar.Dimensions) (xbar.NumericBackend, error)

var (
	mu       sync.RWMutex
	registry = make(map[string]OpenFunc)
)

// Register makes a builtin backend available under the given module name.
// It panics if open is nil or if a backend is registered twice under the same
// name.
//
func Register(name string, open OpenFunc) {
	mu.Lock()
	defer mu.Unlock()
	if open == nil {
		panic("backend: Register open func is nil")
	}
	if _, dup := registry[name]; dup {
		panic("backend: Register called twice for module " + name)
	}
	registry[name] = open
}

// Modules returns a sorted list of the names of the registered backends.
//
func Modules() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) OpenFunc {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// Loader is an xbar.Loader. Registered backends take precedence over plugins.
//
type Loader struct{}

// Load implements xbar.Loader.
//
func (Loader) Load(name string, path []string, dims xbar.Dimensions) (xbar.NumericBackend, error) {
	if name == "" {
		return nil, errors.New("empty module name")
	}
	if open := lookup(name); open != nil {
		return open(dims)
	}
	file, err := Find(name, path)
	if err != nil {
		return nil, err
	}
	return openPlugin(file, dims)
}

// Find returns the path of the plugin file for module name in the search
// path. An empty search path means the current directory.
//
func Find(name string, path []string) (string, error) {
	if len(path) == 0 {
		path = []string{"."}
	}
	base := name
	if filepath.Ext(base) != ".so" {
		base += ".so"
	}
	if filepath.IsAbs(base) || filepath.Base(base) != base {
		if _, err := os.Stat(base); err != nil {
			return "", errors.Wrapf(err, "module %s", name)
		}
		return base, nil
	}
	for _, dir := range path {
		file := filepath.Join(dir, base)
		if fi, err := os.Stat(file); err == nil && !fi.IsDir() {
			return file, nil
		}
	}
	return "", errors.Errorf("module %s not found in %v", name, path)
}
