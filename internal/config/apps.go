package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var appNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]+$`)

// AppConfig is one application registration from the apps document.
// Module and Class bind the entry to a compiled-in implementation; every
// other key is passed through to the app untouched.
type AppConfig struct {
	Module string
	Class  string
	Args   map[string]any
}

// AppEntry pairs an application name with its configuration, preserving
// document order.
type AppEntry struct {
	Name   string
	Config AppConfig
}

// LoadApps parses the apps document (apps.yaml) and validates its shape.
func LoadApps(path string) ([]AppEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read apps file: %w", err)
	}
	return ParseApps(data)
}

// ParseApps decodes an apps document. The top level is a mapping keyed by
// application name; entries appear in document order.
func ParseApps(data []byte) ([]AppEntry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse apps file: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("apps file: top level must be a mapping")
	}

	seen := make(map[string]bool)
	entries := make([]AppEntry, 0, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valueNode := root.Content[i+1]

		name := keyNode.Value
		if seen[name] {
			return nil, fmt.Errorf("apps file: duplicate app %q", name)
		}
		seen[name] = true

		var raw map[string]any
		if err := valueNode.Decode(&raw); err != nil {
			return nil, fmt.Errorf("apps file: app %q: %w", name, err)
		}

		cfg, err := appConfigFromRaw(name, raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, AppEntry{Name: name, Config: cfg})
	}

	return entries, nil
}

func appConfigFromRaw(name string, raw map[string]any) (AppConfig, error) {
	if !appNamePattern.MatchString(name) {
		return AppConfig{}, fmt.Errorf("apps file: app name %q does not match %s", name, appNamePattern.String())
	}

	module, _ := raw["module"].(string)
	if module == "" {
		return AppConfig{}, fmt.Errorf("apps file: app %q: module is required", name)
	}
	class, _ := raw["class"].(string)
	if class == "" {
		return AppConfig{}, fmt.Errorf("apps file: app %q: class is required", name)
	}

	args := make(map[string]any, len(raw))
	for key, value := range raw {
		if key == "module" || key == "class" {
			continue
		}
		args[key] = value
	}

	return AppConfig{Module: module, Class: class, Args: args}, nil
}

// DecodeArgs decodes the app's passthrough args into a typed struct.
func (c AppConfig) DecodeArgs(out any) error {
	data, err := yaml.Marshal(c.Args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}

// MarshalApps serializes app entries back into the apps document shape.
// Parsing the output yields an equivalent entry list.
func MarshalApps(entries []AppEntry) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range entries {
		value := map[string]any{
			"module": entry.Config.Module,
			"class":  entry.Config.Class,
		}
		for key, arg := range entry.Config.Args {
			value[key] = arg
		}

		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: entry.Name}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(value); err != nil {
			return nil, fmt.Errorf("encode app %q: %w", entry.Name, err)
		}
		root.Content = append(root.Content, keyNode, valueNode)
	}
	return yaml.Marshal(root)
}
