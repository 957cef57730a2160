package factory

// RegistryOptions configures the behavior of the mount registry.
type RegistryOptions struct {
	// AllowOverwrite lets a later Mount replace the adapter on a prefix
	// that is already mounted.
	AllowOverwrite bool
}

// DefaultRegistryOptions is what a session uses: the last mount wins.
var DefaultRegistryOptions = RegistryOptions{
	AllowOverwrite: true,
}
