package blueprint

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrSealed is returned when adding to a container after Seal
var ErrSealed = errors.New("blueprint: container is sealed")

// Lookup resolves a type name to its blueprint. The circuit loader depends on
// this interface only.
type Lookup interface {
	Get(typeName string) (*Blueprint, bool)
}

// Container is the blueprint registry. It is populated once at startup,
// sealed, and then only read; reads are safe from multiple goroutines.
type Container struct {
	mu         sync.RWMutex
	blueprints map[string]*Blueprint
	sealed     bool
}

var _ Lookup = (*Container)(nil)

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		blueprints: make(map[string]*Blueprint),
	}
}

// Add registers a blueprint under its type name. Type names are unique and
// may not contain a double quote, since circuit files store them unescaped.
func (c *Container) Add(bp *Blueprint) error {
	if bp == nil || bp.Type() == "" {
		return fmt.Errorf("blueprint: invalid blueprint")
	}
	if strings.Contains(bp.Type(), `"`) {
		return fmt.Errorf("blueprint: type name %q contains a double quote", bp.Type())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return ErrSealed
	}
	if _, exists := c.blueprints[bp.Type()]; exists {
		return fmt.Errorf("blueprint: duplicate type %q", bp.Type())
	}
	c.blueprints[bp.Type()] = bp
	return nil
}

// Seal makes the container read-only
func (c *Container) Seal() {
	c.mu.Lock()
	c.sealed = true
	c.mu.Unlock()
}

// Get implements Lookup.
func (c *Container) Get(typeName string) (*Blueprint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bp, ok := c.blueprints[typeName]
	return bp, ok
}

// Types returns the registered type names, sorted
func (c *Container) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	types := make([]string, 0, len(c.blueprints))
	for name := range c.blueprints {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// Len returns the number of registered blueprints
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blueprints)
}

// LoadFiles reads the provided template files and adds each blueprint to the
// container.
func (c *Container) LoadFiles(shapes ShapeResolver, paths ...string) error {
	for _, path := range paths {
		bp, err := ReadBlueprint(path, shapes)
		if err != nil {
			return err
		}
		if err := c.Add(bp); err != nil {
			return fmt.Errorf("blueprint: add %s: %w", path, err)
		}
	}
	return nil
}

// LoadDir recursively loads all .xml templates from the provided directory.
func (c *Container) LoadDir(root string, shapes ShapeResolver) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !isTemplateFile(path) {
			return nil
		}
		bp, err := ReadBlueprint(path, shapes)
		if err != nil {
			return err
		}
		if err := c.Add(bp); err != nil {
			return fmt.Errorf("blueprint: add %s: %w", path, err)
		}
		return nil
	})
}

func isTemplateFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".xml"
}
