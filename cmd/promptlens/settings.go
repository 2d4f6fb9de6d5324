package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/entrhq/promptlens/pkg/config"
)

const llmKeyPrefix = config.SectionIDLLM + "."

func (a *app) runSettings(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: promptlens settings show | set key=value ...")
		return errUsage
	}

	if err := config.Initialize(a.storePath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	switch args[0] {
	case "show":
		showSettings(os.Stdout, config.Global())
		return nil
	case "set":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: promptlens settings set key=value ...")
			return errUsage
		}
		if err := applySettings(config.Global(), args[1:]); err != nil {
			return err
		}
		fmt.Println("Settings saved.")
		return nil
	default:
		fmt.Fprintf(os.Stderr, "unknown settings command %q\n", args[0])
		return errUsage
	}
}

// applySettings assigns key=value pairs and saves. Keys of the llm section
// are written as llm.<key>. Nothing is saved if any pair is invalid.
func applySettings(manager *config.Manager, assignments []string) error {
	settings := config.GetSettings()
	llmSection := config.GetLLM()
	if settings == nil || llmSection == nil {
		return fmt.Errorf("configuration sections are not registered")
	}

	for _, assignment := range assignments {
		key, value, ok := strings.Cut(assignment, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid assignment %q (want key=value)", assignment)
		}

		if llmKey, isLLM := strings.CutPrefix(key, llmKeyPrefix); isLLM {
			if _, known := llmSection.Data()[llmKey]; !known {
				return fmt.Errorf("unknown setting %q", key)
			}
			if err := llmSection.SetData(map[string]any{llmKey: value}); err != nil {
				return err
			}
			continue
		}

		if err := settings.Set(key, value); err != nil {
			return err
		}
	}

	if err := manager.SaveAll(); err != nil {
		_ = manager.LoadAll()
		return err
	}
	return nil
}

func showSettings(w io.Writer, manager *config.Manager) {
	for _, section := range manager.GetSections() {
		fmt.Fprintf(w, "[%s] %s\n", section.ID(), section.Title())

		data := section.Data()
		keys := make([]string, 0, len(data))
		for key := range data {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			value := fmt.Sprintf("%v", data[key])
			if key == "apiKey" {
				value = maskSecret(value)
			}
			fmt.Fprintf(w, "  %s = %s\n", key, value)
		}
		fmt.Fprintln(w)
	}
}

// maskSecret keeps the last four characters of a secret.
func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
