package plugin

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/tree"
)

// Register returns a new plugin list with p appended, or with the existing
// entry of the same name replaced at its original index. It never fails; an
// override is logged.
func Register(plugins []Definition, p Definition, logger *zap.Logger) []Definition {
	out := slices.Clone(plugins)
	for i, existing := range out {
		if existing.Name == p.Name {
			if logger != nil {
				logger.Info("plugin override", zap.String("plugin", p.Name), zap.Int("index", i))
			}
			out[i] = p
			return out
		}
	}
	return append(out, p)
}

// DeriveActions flattens the actions of every plugin in order.
func DeriveActions(plugins []Definition) []ResolvedAction {
	var out []ResolvedAction
	for _, p := range plugins {
		for i, a := range p.Actions {
			out = append(out, ResolvedAction{
				Action:  a,
				Name:    p.Name + "/" + strconv.Itoa(i),
				Plugin:  p.Name,
				Options: p.Options,
			})
		}
	}
	return out
}

// DeriveComponentTree maps node types to component entries. A duplicate key
// is logged and resolved in favour of the later plugin.
func DeriveComponentTree(plugins []Definition, logger *zap.Logger) map[string]ComponentEntry {
	out := make(map[string]ComponentEntry)
	owner := make(map[string]string)
	for _, p := range plugins {
		root := p.Component
		if root.Class == tree.ClassGeneric {
			root.Class = p.Class
		}
		addComponent(out, owner, p.Name, p.Name, root, logger)
	}
	return out
}

func addComponent(out map[string]ComponentEntry, owner map[string]string, plugin, key string, entry ComponentEntry, logger *zap.Logger) {
	if prev, dup := owner[key]; dup && logger != nil {
		logger.Warn("duplicate component type",
			zap.String("type", key),
			zap.String("previous", prev),
			zap.String("plugin", plugin),
		)
	}
	entry.Type = key
	out[key] = entry
	owner[key] = plugin
	for _, child := range entry.Children {
		addComponent(out, owner, plugin, ChildType(key, child.Type), child, logger)
	}
}

// Registry holds the plugins of one editing session and their derived
// actions and component tree.
type Registry struct {
	mu         sync.RWMutex
	plugins    []Definition
	actions    []ResolvedAction
	components map[string]ComponentEntry
	logger     *zap.Logger
}

// NewRegistry creates a registry with the given plugins registered in order.
func NewRegistry(logger *zap.Logger, plugins ...Definition) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{logger: logger.Named("registry")}
	for _, p := range plugins {
		r.plugins = Register(r.plugins, p, r.logger)
	}
	r.derive()
	return r
}

// derive recomputes the derived views. Caller must hold the write lock.
func (r *Registry) derive() {
	r.actions = DeriveActions(r.plugins)
	r.components = DeriveComponentTree(r.plugins, r.logger)
}

// Register adds or overrides a plugin.
func (r *Registry) Register(p Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = Register(r.plugins, p, r.logger)
	r.derive()
}

// Unregister removes a plugin by name.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.plugins {
		if p.Name == name {
			r.plugins = slices.Delete(slices.Clone(r.plugins), i, i+1)
			r.derive()
			return true
		}
	}
	return false
}

// Plugins returns a copy of the plugin list.
func (r *Registry) Plugins() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.plugins)
}

// Plugin returns a plugin by name.
func (r *Registry) Plugin(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.plugins {
		if p.Name == name {
			return p, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %s", ErrPluginNotFound, name)
}

// Actions returns every resolved action.
func (r *Registry) Actions() []ResolvedAction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.actions)
}

// Action returns a resolved action by its qualified name.
func (r *Registry) Action(name string) (ResolvedAction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.actions {
		if a.Name == name {
			return a, true
		}
	}
	return ResolvedAction{}, false
}

// Components returns a copy of the type -> component map.
func (r *Registry) Components() map[string]ComponentEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.components)
}

// Component returns the component entry for a node type.
func (r *Registry) Component(typ string) (ComponentEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[typ]
	return c, ok
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// Consume offers res to every plugin consumer in registration order and
// returns the nodes from the first that accepts it.
func (r *Registry) Consume(ctx context.Context, res Resource) ([]tree.Node, error) {
	for _, p := range r.Plugins() {
		if p.Consumer == nil || !p.Consumer.Consumes(res) {
			continue
		}
		nodes, err := p.Consumer.Consume(ctx, res)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: consume %s: %w", p.Name, res.Name, err)
		}
		return nodes, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoConsumer, res.Name)
}
