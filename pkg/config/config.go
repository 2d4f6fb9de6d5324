package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// NewDefaultManager creates a manager over store with the settings and LLM
// sections registered and loaded.
func NewDefaultManager(store Store) (*Manager, error) {
	manager := NewManager(store)

	if err := manager.RegisterSection(NewSettingsSection()); err != nil {
		return nil, err
	}

	if err := manager.RegisterSection(NewLLMSection()); err != nil {
		return nil, err
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}

	return manager, nil
}

// Initialize creates and initializes the global configuration manager.
// This should be called once at application startup.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager, err := NewDefaultManager(store)
	if err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetSettings returns the panel settings section from global config.
// Returns nil if config is not initialized.
func GetSettings() *SettingsSection {
	if !IsInitialized() {
		return nil
	}

	section, ok := Global().GetSection(SectionIDSettings)
	if !ok {
		return nil
	}

	settings, ok := section.(*SettingsSection)
	if !ok {
		return nil
	}

	return settings
}

// GetLLM returns the LLM settings section from global config.
// Returns nil if config is not initialized.
func GetLLM() *LLMSection {
	if !IsInitialized() {
		return nil
	}

	section, ok := Global().GetSection(SectionIDLLM)
	if !ok {
		return nil
	}

	llm, ok := section.(*LLMSection)
	if !ok {
		return nil
	}

	return llm
}

// reset clears the global manager. Used by tests.
func reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = nil
}
