package transit

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec decodes selector keys, selector maps and transition specs.
// Implement this interface to read other formats.
type Codec interface {
	// Unmarshal deserializes bytes into a value.
	Unmarshal(data []byte, v any) error

	// ContentType returns the MIME type for observability and debugging.
	ContentType() string
}

// JSONCodec implements Codec using encoding/json.
type JSONCodec struct{}

// Unmarshal deserializes JSON bytes into v.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string {
	return "application/json"
}

var _ Codec = JSONCodec{}

// YAMLCodec implements Codec using gopkg.in/yaml.v3. Since YAML is a
// superset of JSON it also reads JSON documents.
type YAMLCodec struct{}

// Unmarshal deserializes YAML bytes into v.
func (YAMLCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// ContentType returns the YAML MIME type.
func (YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

var _ Codec = YAMLCodec{}

// CodecFor picks a codec from a file extension: JSONCodec for .json,
// YAMLCodec otherwise.
func CodecFor(path string) Codec {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSONCodec{}
	}
	return YAMLCodec{}
}
