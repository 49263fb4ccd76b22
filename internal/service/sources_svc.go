package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mathieu-neron/vidsource/internal/model"
)

// FileSources lists sources from a YAML file of the form
//
//	sources:
//	  - key: ff
//	    name: 非凡影视
//	    detail: ffzy
//	    api: https://cj.ffzyapi.com/api.php/provide/vod
//
// The file is read on every call so edits show up on the next page load.
type FileSources struct {
	path string
}

type sourcesFile struct {
	Sources []struct {
		model.Source `yaml:",inline"`
		Disabled     bool `yaml:"disabled"`
	} `yaml:"sources"`
}

func NewFileSources(path string) *FileSources {
	return &FileSources{path: path}
}

// ListSources returns the enabled sources in file order.
func (f *FileSources) ListSources(ctx context.Context) ([]model.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes a sources document. Entries need a key and a name;
// duplicate keys are rejected.
func ParseSources(data []byte) ([]model.Source, error) {
	var doc sourcesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	sources := make([]model.Source, 0, len(doc.Sources))
	seen := make(map[string]struct{}, len(doc.Sources))
	for i, entry := range doc.Sources {
		s := entry.Source
		s.Key = strings.TrimSpace(s.Key)
		s.Name = strings.TrimSpace(s.Name)
		if s.Key == "" || s.Name == "" {
			return nil, fmt.Errorf("sources[%d]: key and name are required", i)
		}
		if _, dup := seen[s.Key]; dup {
			return nil, fmt.Errorf("sources[%d]: duplicate key %q", i, s.Key)
		}
		seen[s.Key] = struct{}{}
		if entry.Disabled {
			continue
		}
		sources = append(sources, s)
	}
	return sources, nil
}
