package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/pkg/errors"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/domain"
)

// seedMatter is the front matter of a markdown content block seed. The
// markdown body becomes the block's primary content.
type seedMatter struct {
	ID       string         `yaml:"id"`
	Slug     string         `yaml:"slug"`
	Title    string         `yaml:"title"`
	Type     string         `yaml:"type"`
	Metadata map[string]any `yaml:"metadata"`
}

// readSeed loads the objects held by a seed file: a JSON array of objects, a
// single JSON object, or a markdown file with front matter.
func readSeed(path string) ([]domain.Object, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		obj, err := parseMarkdownSeed(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot parse %s", path)
		}
		return []domain.Object{obj}, nil
	default:
		objects, err := parseJSONSeed(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot parse %s", path)
		}
		return objects, nil
	}
}

func parseJSONSeed(raw []byte) ([]domain.Object, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var obj domain.Object
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, err
		}
		return []domain.Object{obj}, nil
	}
	var objects []domain.Object
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

func parseMarkdownSeed(raw []byte) (domain.Object, error) {
	var matter seedMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &matter)
	if err != nil {
		return domain.Object{}, err
	}

	metadata := map[string]any{}
	for k, v := range matter.Metadata {
		metadata[k] = normalize(v)
	}
	if content := strings.TrimSpace(string(body)); content != "" {
		metadata["primary_content"] = content
		settings, _ := metadata["block_settings"].(map[string]any)
		if settings == nil {
			settings = map[string]any{}
		}
		if _, ok := settings["content_format"]; !ok {
			settings["content_format"] = "markdown"
		}
		metadata["block_settings"] = settings
	}

	encoded, err := json.Marshal(metadata)
	if err != nil {
		return domain.Object{}, err
	}

	obj := domain.Object{
		ID:       matter.ID,
		Slug:     matter.Slug,
		Title:    matter.Title,
		Type:     matter.Type,
		Metadata: encoded,
	}
	if obj.Type == "" {
		obj.Type = domain.TypeContentBlock
	}
	if obj.Title == "" {
		obj.Title = obj.Slug
	}
	return obj, nil
}

// normalize turns the map[any]any values produced by the yaml decoder into
// JSON encodable maps.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
