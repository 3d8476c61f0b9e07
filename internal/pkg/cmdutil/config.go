// Package cmdutil provides shared utilities for CLI command implementations.
package cmdutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/opgrid/alarmlens/internal/pkg/nodetree"
	"github.com/opgrid/alarmlens/internal/pkg/schema"
)

// GetStringConfig returns the config value for key, or flagValue if the key
// is not set. Flag values take precedence over config file values.
func GetStringConfig(key, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return viper.GetString(key)
}

// GetBoolConfig returns the config value for key, or flagValue if the key is not set.
func GetBoolConfig(key string, flagValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return flagValue
}

// LoadModels reads the host model tree (configuration subtree plus edit
// models) from a YAML file. A missing file yields a fresh tree scaffolded
// with the default configuration.
func LoadModels(path string) (*nodetree.Node, error) {
	root, err := nodetree.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		root = nodetree.NewObject("AlarmGrid")
		root.AddChild(schema.DefaultConfiguration())
		return root, nil
	}
	if err != nil {
		return nil, err
	}
	if root.GetChild(schema.ConfigurationName) == nil {
		return nil, fmt.Errorf("model file %s has no %s subtree", path, schema.ConfigurationName)
	}
	return root, nil
}

// SaveModels writes the host model tree back to its YAML file.
func SaveModels(path string, root *nodetree.Node) error {
	return nodetree.SaveFile(path, root)
}
