// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package templates

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"docforge/internal/models"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// systemNamespace derives stable ids for built-in templates, so the same
// definition maps to the same record across restarts and databases.
var systemNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("docforge:system-templates"))

// definition is the YAML shape of a built-in template.
type definition struct {
	Key           string                `yaml:"key"`
	Name          string                `yaml:"name"`
	NameRO        string                `yaml:"name_ro"`
	Description   string                `yaml:"description"`
	Type          models.TemplateType   `yaml:"type"`
	Content       models.Content        `yaml:"content"`
	Variables     []models.Variable     `yaml:"variables"`
	Sections      []models.Section      `yaml:"sections"`
	Styling       models.Styling        `yaml:"styling"`
	OutputFormats []models.OutputFormat `yaml:"output_formats"`
	Metadata      models.Metadata       `yaml:"metadata"`
}

// SystemTemplateID returns the id a built-in template is stored under.
func SystemTemplateID(key string) string {
	return uuid.NewSHA1(systemNamespace, []byte(key)).String()
}

// systemDefinitions parses the embedded built-in definitions, sorted by
// key.
func systemDefinitions() ([]definition, error) {
	return loadDefinitions(builtinFS, "builtin")
}

func loadDefinitions(fsys fs.FS, dir string) ([]definition, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read builtin templates: %w", err)
	}

	var defs []definition
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		var d definition
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		if d.Key == "" {
			return nil, fmt.Errorf("parse %s: missing key", e.Name())
		}
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })
	return defs, nil
}

// EnsureSystemTemplates installs every built-in template that is not yet
// stored. Installed templates are ACTIVE at version 1, flagged as system
// and carry a single history entry. Existing records are left alone.
func (m *Manager) EnsureSystemTemplates(ctx context.Context) (int, error) {
	defs, err := systemDefinitions()
	if err != nil {
		return 0, err
	}

	installed := 0
	for _, d := range defs {
		id := SystemTemplateID(d.Key)
		existing, err := m.repo.FindTemplate(ctx, id)
		if err != nil {
			return installed, fmt.Errorf("find system template %s: %w", d.Key, err)
		}
		if existing != nil {
			continue
		}

		now := m.now()
		t := &models.Template{
			ID:            id,
			Name:          d.Name,
			NameRO:        d.NameRO,
			Description:   d.Description,
			Type:          d.Type,
			Status:        models.TemplateStatusActive,
			Version:       1,
			Content:       d.Content,
			Variables:     d.Variables,
			Sections:      d.Sections,
			Styling:       d.Styling,
			OutputFormats: d.OutputFormats,
			Metadata:      d.Metadata,
			IsSystem:      true,
			CreatedBy:     "system",
			PublishedAt:   &now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		normalize(t)
		if err := checkDefinition(t); err != nil {
			return installed, fmt.Errorf("system template %s: %w", d.Key, err)
		}

		if err := m.repo.InsertTemplate(ctx, t, t.Snapshot(m.newID(), changelogInitial, "system", now)); err != nil {
			return installed, fmt.Errorf("install system template %s: %w", d.Key, err)
		}
		slog.Info("system template installed", "key", d.Key, "template_id", id)
		installed++
	}
	return installed, nil
}
