package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skryldev/jobly/sqlbuild"
)

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseFilters turns repeated key=value flags into criteria. A repeated key
// keeps its last value.
func parseFilters(pairs []string) (sqlbuild.Criteria, error) {
	c := make(sqlbuild.Criteria, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("filter %q: want key=value", p)
		}
		c[strings.TrimSpace(k)] = v
	}
	return c, nil
}

// readData returns the --data argument, reading stdin when it is "-".
func readData(cmd *cobra.Command, data string) ([]byte, error) {
	if data == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		data = string(b)
	}
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, fmt.Errorf("--data is required")
	}
	return []byte(data), nil
}

// decodeStrict rejects fields v does not declare.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid data: %w", err)
	}
	return nil
}

func decodePayload(data []byte) (sqlbuild.Payload, error) {
	var p sqlbuild.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	return p, nil
}
