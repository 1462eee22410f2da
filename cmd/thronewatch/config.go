package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/titanous/json5"
)

// JSON5 is a kong.ConfigurationLoader for JSON5 files. Keys are flag names
// with underscores in place of dashes, e.g. log_level or smtp_host.
func JSON5(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var values map[string]any
	if err := json5.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	normalized, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return kong.JSON(bytes.NewReader(normalized))
}
