package bootstrap

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Codec turns a Snapshot into reloadable text and back.
type Codec interface {
	Encode(s Snapshot) ([]byte, error)
	Decode(data []byte) (Snapshot, error)

	// Ext is the file extension used by FileStore, without the dot.
	Ext() string
}

// CodecFor returns the codec registered under format ("json", "yaml",
// "toml"). An empty format selects JSON.
func CodecFor(format string) (Codec, error) {
	switch format {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	case "toml":
		return TOMLCodec{}, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown snapshot format %q", format)
	}
}

// ── JSON ──────────────────────────────────────────────────────────────────────

// json sorts map keys, so the same snapshot always encodes to the same bytes.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONCodec writes tab-indented JSON with sorted keys.
type JSONCodec struct{}

func (JSONCodec) Ext() string { return "json" }

func (JSONCodec) Encode(s Snapshot) ([]byte, error) {
	s.normalize()
	compact, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: encode json: %w", err)
	}
	// jsoniter only indents with spaces.
	var buf bytes.Buffer
	if err := stdjson.Indent(&buf, compact, "", "\t"); err != nil {
		return nil, fmt.Errorf("bootstrap: encode json: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (JSONCodec) Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("bootstrap: decode json: %w", err)
	}
	s.normalize()
	return s, nil
}

// ── YAML ──────────────────────────────────────────────────────────────────────

// YAMLCodec writes YAML. YAML forbids tab indentation, so two spaces are used.
type YAMLCodec struct{}

func (YAMLCodec) Ext() string { return "yaml" }

func (YAMLCodec) Encode(s Snapshot) ([]byte, error) {
	s.normalize()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("bootstrap: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("bootstrap: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func (YAMLCodec) Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("bootstrap: decode yaml: %w", err)
	}
	s.normalize()
	return s, nil
}

// ── TOML ──────────────────────────────────────────────────────────────────────

// TOMLCodec writes TOML with tab indentation for nested tables.
type TOMLCodec struct{}

func (TOMLCodec) Ext() string { return "toml" }

func (TOMLCodec) Encode(s Snapshot) ([]byte, error) {
	s.normalize()
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = "\t"
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("bootstrap: encode toml: %w", err)
	}
	return buf.Bytes(), nil
}

func (TOMLCodec) Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if _, err := toml.Decode(string(data), &s); err != nil {
		return Snapshot{}, fmt.Errorf("bootstrap: decode toml: %w", err)
	}
	s.normalize()
	return s, nil
}
