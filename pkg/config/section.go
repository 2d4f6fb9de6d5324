package config

// Section is one named group of persisted settings.
type Section interface {
	// ID is the key the section is stored under.
	ID() string

	// Title is a short human-readable name.
	Title() string

	// Description explains what the section configures.
	Description() string

	// Data returns the section's values as stored.
	Data() map[string]any

	// SetData applies stored values. Unknown keys are ignored.
	SetData(data map[string]any) error

	// Validate checks the current values.
	Validate() error

	// Reset restores defaults.
	Reset()
}
