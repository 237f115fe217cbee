package refdata

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/garyellow/calmmate-go/internal/contacts"
	domerrors "github.com/garyellow/calmmate-go/internal/errors"
	"github.com/garyellow/calmmate-go/internal/r2client"
	"github.com/garyellow/calmmate-go/internal/university"
)

// MaxDocumentSize caps a decompressed reference document.
const MaxDocumentSize = 32 << 20

//go:embed schemas/*.json
var schemaFS embed.FS

// Kind identifies a reference table.
type Kind string

const (
	Locations    Kind = "locations"
	Universities Kind = "universities"
)

var (
	schemaOnce sync.Once
	schemas    map[Kind]*jsonschema.Schema
	schemaErr  error
)

func compileSchemas() {
	schemas = make(map[Kind]*jsonschema.Schema, 2)
	compiler := jsonschema.NewCompiler()
	for _, kind := range []Kind{Locations, Universities} {
		name := string(kind) + ".schema.json"
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			schemaErr = err
			return
		}
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			schemaErr = fmt.Errorf("add schema %s: %w", name, err)
			return
		}
	}
	for _, kind := range []Kind{Locations, Universities} {
		s, err := compiler.Compile(string(kind) + ".schema.json")
		if err != nil {
			schemaErr = fmt.Errorf("compile schema %s: %w", kind, err)
			return
		}
		schemas[kind] = s
	}
}

func schemaFor(kind Kind) (*jsonschema.Schema, error) {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return nil, schemaErr
	}
	s, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema for %q", kind)
	}
	return s, nil
}

// DecodeLocations reads a location table document. The format follows the
// extension of name: .json, .yaml or .yml, each optionally suffixed .zst.
func DecodeLocations(name string, r io.Reader) (*contacts.Table, error) {
	data, err := Canonical(Locations, name, r)
	if err != nil {
		return nil, err
	}
	var raw contacts.RawTable
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domerrors.NewDataError(name, err)
	}
	table, err := contacts.NewTable(raw)
	if err != nil {
		return nil, domerrors.NewDataError(name, err)
	}
	return table, nil
}

// DecodeUniversities reads a university directory document.
func DecodeUniversities(name string, r io.Reader) (*university.Directory, error) {
	data, err := Canonical(Universities, name, r)
	if err != nil {
		return nil, err
	}
	var raw university.RawDirectory
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domerrors.NewDataError(name, err)
	}
	dir, err := university.NewDirectory(raw)
	if err != nil {
		return nil, domerrors.NewDataError(name, err)
	}
	return dir, nil
}

// Canonical decompresses and decodes a document, validates it against the
// schema of kind, and returns it as JSON.
func Canonical(kind Kind, name string, r io.Reader) ([]byte, error) {
	base := strings.ToLower(name)
	if strings.HasSuffix(base, ".zst") {
		dec, err := r2client.Decompress(r)
		if err != nil {
			return nil, domerrors.NewDataError(name, err)
		}
		defer dec.Close()
		r = dec
		base = strings.TrimSuffix(base, ".zst")
	}

	body, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, domerrors.NewDataError(name, err)
	}
	if len(body) > MaxDocumentSize {
		return nil, domerrors.NewDataError(name, fmt.Errorf("document exceeds %d bytes", MaxDocumentSize))
	}

	switch path.Ext(base) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(body, &doc); err != nil {
			return nil, domerrors.NewDataError(name, fmt.Errorf("parse yaml: %w", err))
		}
		if body, err = json.Marshal(stringKeys(doc)); err != nil {
			return nil, domerrors.NewDataError(name, err)
		}
	case ".json", "":
	default:
		return nil, domerrors.NewDataError(name, fmt.Errorf("unsupported format %q", path.Ext(base)))
	}

	if err := validate(kind, body); err != nil {
		return nil, domerrors.NewDataError(name, err)
	}
	return body, nil
}

func validate(kind Kind, body []byte) error {
	schema, err := schemaFor(kind)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return schema.Validate(doc)
}

// stringKeys converts YAML mappings with non-string keys, such as numeric
// student ids, into JSON-compatible maps.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = stringKeys(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}
