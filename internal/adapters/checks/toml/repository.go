package toml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/xiq-poe-check/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	checksFileMode  = 0o600
	checksDirMode   = 0o700
	tempFilePattern = ".checks-*.toml.tmp"
)

var ErrCheckNotFound = errors.New("check not found")

type Repository struct {
	path string
}

func NewRepository(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("checks path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve checks path: %w", err)
	}

	return &Repository{path: filepath.Clean(absPath)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

// List returns the built-in power check followed by the checks defined in the file.
func (r *Repository) List(ctx context.Context) ([]domain.Check, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	checks := []domain.Check{domain.DefaultPowerCheck()}
	for _, entry := range file.Checks {
		check := fromSchema(entry)
		if err := check.Validate(); err != nil {
			return nil, fmt.Errorf("checks file %s: %w", r.path, err)
		}
		checks = replaceOrAppend(checks, check)
	}

	return checks, nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (domain.Check, error) {
	checks, err := r.List(ctx)
	if err != nil {
		return domain.Check{}, err
	}

	for _, check := range checks {
		if check.Name == name {
			return check, nil
		}
	}

	return domain.Check{}, fmt.Errorf("%w: %s", ErrCheckNotFound, name)
}

// WriteDefaults writes a checks file holding the built-in check. An existing file is kept.
func (r *Repository) WriteDefaults(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := os.Stat(r.path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat checks file: %w", err)
	}

	file := fileSchema{Checks: []checkSchema{toSchema(domain.DefaultPowerCheck())}}
	if err := r.writeSchema(file); err != nil {
		return false, err
	}

	return true, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read checks file: %w", err)
	}

	var file fileSchema
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return fileSchema{}, fmt.Errorf("decode checks file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), checksDirMode); err != nil {
		return fmt.Errorf("create checks directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode checks file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp checks file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp checks file: %w", err)
	}

	if err := tempFile.Chmod(checksFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp checks file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp checks file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace checks file: %w", err)
	}

	cleanup = false
	return nil
}

func replaceOrAppend(checks []domain.Check, check domain.Check) []domain.Check {
	for i := range checks {
		if checks[i].Name == check.Name {
			checks[i] = check
			return checks
		}
	}

	return append(checks, check)
}

func toSchema(check domain.Check) checkSchema {
	return checkSchema{
		Name:       check.Name,
		Commands:   check.Commands,
		Pattern:    check.Pattern,
		Column:     check.Column,
		FileSuffix: check.FileSuffix,
		OKValues:   check.OKValues,
	}
}

func fromSchema(entry checkSchema) domain.Check {
	return domain.Check{
		Name:       entry.Name,
		Commands:   entry.Commands,
		Pattern:    entry.Pattern,
		Column:     entry.Column,
		FileSuffix: entry.FileSuffix,
		OKValues:   entry.OKValues,
	}
}
