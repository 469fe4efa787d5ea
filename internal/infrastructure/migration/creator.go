package migration

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
)

// Templates for freshly created migrations. The postgres driver runs each
// file in its own transaction, so no explicit BEGIN/COMMIT is needed.
const upTemplate = `-- {{.Name}}
-- created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`

const downTemplate = `-- revert: {{.Name}}
-- created: {{.Timestamp}}

`

// MigrationFile describes a created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down migration pair into dir. The
// version is the current timestamp so new files always sort after the
// numbered seed migrations.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	mf := &MigrationFile{
		Version:     now.Format("20060102150405"),
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
	}

	base := mf.Version + "_" + slugify(name)
	mf.UpPath = filepath.Join(dir, base+".up.sql")
	mf.DownPath = filepath.Join(dir, base+".down.sql")

	if err := writeFromTemplate(mf.UpPath, upTemplate, mf); err != nil {
		return nil, fmt.Errorf("create up migration: %w", err)
	}
	if err := writeFromTemplate(mf.DownPath, downTemplate, mf); err != nil {
		// don't leave a half-created pair behind
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("create down migration: %w", err)
	}

	return mf, nil
}

func writeFromTemplate(path, tmpl string, data *MigrationFile) error {
	t, err := template.New(filepath.Base(path)).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parse migration template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("render migration template: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// slugify turns a migration name into a lowercase snake_case file name part.
// Characters outside [a-z0-9] are dropped, word breaks become underscores.
func slugify(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ' || r == '-' || r == '_':
			return ' '
		}
		return -1
	}, name)
	return strings.Join(strings.Fields(mapped), "_")
}

// ListMigrations returns the migration base names found in dir, sorted. A
// missing directory is treated as empty.
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}
