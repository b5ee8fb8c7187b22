package plugin

import "errors"

// Plugin errors.
var (
	// ErrPluginNotFound is returned when a plugin name is not registered.
	ErrPluginNotFound = errors.New("plugin: not found")

	// ErrInvalidName is returned when a plugin name is not "<prefix>/<name>".
	ErrInvalidName = errors.New("plugin: name must be <prefix>/<name>")

	// ErrNoConsumer is returned when no plugin consumes a resource.
	ErrNoConsumer = errors.New("plugin: no consumer for resource")
)
