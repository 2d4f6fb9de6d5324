package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFileStore_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if store.Path() != path {
		t.Errorf("Path() = %q, want %q", store.Path(), path)
	}

	data, err := store.GetSection("settings")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty section, got %v", data)
	}
	if store.IsModified() {
		t.Error("Fresh store should not be modified")
	}
}

func TestFileStore_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.SetSection("settings", map[string]any{"aiModel": "gemini-2.5-pro", "darkMode": true}); err != nil {
		t.Fatalf("SetSection failed: %v", err)
	}
	if !store.IsModified() {
		t.Error("Store should be modified after SetSection")
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if store.IsModified() {
		t.Error("Store should be clean after Save")
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file should not remain after Save")
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("Config file mode = %v, want 0600", info.Mode().Perm())
		}
	}

	reloaded, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	data, _ := reloaded.GetSection("settings")
	if data["aiModel"] != "gemini-2.5-pro" {
		t.Errorf("aiModel = %v, want gemini-2.5-pro", data["aiModel"])
	}
	if data["darkMode"] != true {
		t.Errorf("darkMode = %v, want true", data["darkMode"])
	}
}

func TestFileStore_ReturnsCopies(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	input := map[string]any{"apiKey": "k1"}
	store.SetSection("settings", input)
	input["apiKey"] = "mutated"

	got, _ := store.GetSection("settings")
	if got["apiKey"] != "k1" {
		t.Error("SetSection should store a copy")
	}

	got["apiKey"] = "mutated"
	again, _ := store.GetSection("settings")
	if again["apiKey"] != "k1" {
		t.Error("GetSection should return a copy")
	}

	all, _ := store.GetAll()
	all["settings"]["apiKey"] = "mutated"
	again, _ = store.GetSection("settings")
	if again["apiKey"] != "k1" {
		t.Error("GetAll should return a deep copy")
	}
}

func TestFileStore_SetAll(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	store.SetSection("old", map[string]any{"x": "y"})
	if err := store.SetAll(map[string]map[string]any{"llm": {"base_url": "http://localhost"}}); err != nil {
		t.Fatalf("SetAll failed: %v", err)
	}

	all, _ := store.GetAll()
	if _, ok := all["old"]; ok {
		t.Error("SetAll should replace existing sections")
	}
	if all["llm"]["base_url"] != "http://localhost" {
		t.Errorf("Unexpected sections: %v", all)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := NewFileStore(path); err == nil {
		t.Error("Expected error for corrupt config file")
	}
}
