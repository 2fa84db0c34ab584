package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/orderparse/internal/model"
)

// ErrInvalidCatalog is returned when a catalog file does not match the schema
var ErrInvalidCatalog = errors.New("invalid catalog")

// catalogSchema describes a catalog file: {"products": [...]}
const catalogSchema = `{
  "type": "object",
  "required": ["products"],
  "properties": {
    "products": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "price"],
        "properties": {
          "id": {"type": "integer"},
          "name": {"type": "string", "minLength": 1},
          "price": {"type": "integer", "minimum": 0},
          "type": {"enum": ["regular", "daily", "special", "lunchbox"]},
          "target_date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
          "active": {"type": "boolean"}
        },
        "if": {
          "properties": {"type": {"enum": ["daily", "special"]}},
          "required": ["type"]
        },
        "then": {"required": ["target_date"]}
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.json", strings.NewReader(catalogSchema)); err != nil {
		panic(fmt.Sprintf("add catalog schema: %v", err))
	}
	return compiler.MustCompile("catalog.json")
}

type catalogFile struct {
	Products []fileProduct `json:"products"`
}

type fileProduct struct {
	model.CatalogProduct
	Active *bool `json:"active,omitempty"`
}

// Load reads the catalog from the configured file or database
func Load(ctx context.Context, cfg model.CatalogConfig) ([]model.CatalogProduct, error) {
	if cfg.Path != "" {
		return LoadFile(cfg.Path, cfg.ActiveOnly)
	}
	if cfg.DSN != "" {
		return LoadSQL(ctx, cfg.Driver, cfg.DSN, cfg.ActiveOnly)
	}
	return []model.CatalogProduct{}, nil
}

// LoadFile reads a YAML or JSON catalog file
func LoadFile(path string, activeOnly bool) ([]model.CatalogProduct, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data, activeOnly)
	case ".json":
		return ParseJSON(data, activeOnly)
	default:
		return nil, fmt.Errorf("%w: unsupported catalog file extension %q", ErrInvalidCatalog, filepath.Ext(path))
	}
}

// ParseYAML decodes and validates a YAML catalog document
func ParseYAML(data []byte, activeOnly bool) ([]model.CatalogProduct, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", ErrInvalidCatalog, err)
	}

	// Re-encode so the validator and decoder see JSON types
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: convert yaml: %v", ErrInvalidCatalog, err)
	}
	return ParseJSON(js, activeOnly)
}

// ParseJSON decodes and validates a JSON catalog document
func ParseJSON(data []byte, activeOnly bool) ([]model.CatalogProduct, error) {
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: parse json: %v", ErrInvalidCatalog, err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode products: %v", ErrInvalidCatalog, err)
	}

	products := make([]model.CatalogProduct, 0, len(file.Products))
	for _, fp := range file.Products {
		if activeOnly && fp.Active != nil && !*fp.Active {
			continue
		}
		p := fp.CatalogProduct
		if p.Type == "" {
			p.Type = model.ProductRegular
		}
		products = append(products, p)
	}
	return products, nil
}
