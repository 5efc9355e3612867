// Package config stores plugin settings as YAML under DATA_DIR/config/PLUGIN_NAME/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDirName is the subdir under the data root: data/config
	ConfigDirName = "config"
	// ConfigFileName is the config file name per plugin
	ConfigFileName = "config.yaml"
	// DataDirEnv overrides the default data root.
	DataDirEnv = "DATA_DIR"
	// DefaultDataDir is used when DATA_DIR is unset.
	DefaultDataDir = "data"
)

// DataDir returns the data root: DATA_DIR if set, otherwise "data".
func DataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir
	}
	return DefaultDataDir
}

// Path returns dataDir/config/pluginName/config.yaml.
func Path(dataDir, pluginName string) string {
	return filepath.Join(Dir(dataDir, pluginName), ConfigFileName)
}

// Dir returns dataDir/config/pluginName.
func Dir(dataDir, pluginName string) string {
	return filepath.Join(dataDir, ConfigDirName, pluginName)
}

// Read unmarshals the plugin config into dest. A missing or empty file leaves dest unchanged.
func Read(dataDir, pluginName string, dest any) error {
	data, err := os.ReadFile(Path(dataDir, pluginName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config read: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("config unmarshal: %w", err)
	}
	return nil
}

// Save writes v as the plugin config, creating parent dirs as needed.
// Files are written 0600 since plugin configs may hold API secrets.
func Save(dataDir, pluginName string, v any) error {
	if err := os.MkdirAll(Dir(dataDir, pluginName), 0o755); err != nil {
		return fmt.Errorf("config mkdir: %w", err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("config marshal: %w", err)
	}
	if err := os.WriteFile(Path(dataDir, pluginName), data, 0o600); err != nil {
		return fmt.Errorf("config write: %w", err)
	}
	return nil
}

// LoadOrInit reads the plugin config into dest. dest should already hold the defaults;
// when no file exists yet those defaults are written out so operators have a template to fill in.
func LoadOrInit(dataDir, pluginName string, dest any) error {
	if !Exists(dataDir, pluginName) {
		return Save(dataDir, pluginName, dest)
	}
	return Read(dataDir, pluginName, dest)
}

// Delete removes the plugin config file and, if empty, its directory.
func Delete(dataDir, pluginName string) error {
	if err := os.Remove(Path(dataDir, pluginName)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config delete: %w", err)
	}
	_ = os.Remove(Dir(dataDir, pluginName))
	return nil
}

// Exists reports whether the plugin config file exists.
func Exists(dataDir, pluginName string) bool {
	_, err := os.Stat(Path(dataDir, pluginName))
	return err == nil
}
