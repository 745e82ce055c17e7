package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOptions reads engine options from a YAML file using strict parsing.
// Fields missing from the file keep their DefaultOptions value; unknown
// fields are an error.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions() // Start with defaults

	if path == "" {
		return opts, nil
	}

	// 1. Open File
	file, err := os.Open(path)
	if err != nil {
		return opts, fmt.Errorf("failed to open engine config: %w", err)
	}
	defer file.Close()

	// 2. Setup Strict Decoder
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	// 3. Decode
	if err := decoder.Decode(&opts); err != nil {
		return opts, fmt.Errorf("YAML syntax error in engine config: %w", err)
	}

	if _, err := parseLogLevel(opts.LogLevel); err != nil {
		return opts, fmt.Errorf("invalid engine config: %w", err)
	}
	return opts, nil
}
