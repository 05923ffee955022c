// Package repository implements the package repository over a directory of YAML files.
package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var extensions = []string{".yaml", ".yml"}

// Repository implements ports.PackageRepository. Each package lives in <dir>/<name>.yaml or <dir>/<name>.yml.
type Repository struct {
	dir    string
	logger ports.Logger
	cache  *parseCache
}

// New creates a Repository reading from dir.
func New(dir string, logger ports.Logger) *Repository {
	return &Repository{
		dir:    filepath.Clean(dir),
		logger: logger,
		cache:  newParseCache(),
	}
}

// Dir returns the package directory.
func (r *Repository) Dir() string {
	return r.dir
}

// GetPackage loads the package definition file named after name.
func (r *Repository) GetPackage(ctx context.Context, name string) (domain.Package, error) {
	if err := ctx.Err(); err != nil {
		return domain.Package{}, err
	}
	if !domain.IsValidPackageName(name) {
		return domain.Package{}, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "invalid package name"), "package", name)
	}
	if err := r.checkDir(); err != nil {
		return domain.Package{}, err
	}

	var found []string
	for _, ext := range extensions {
		path := filepath.Join(r.dir, name+ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			found = append(found, path)
		}
	}

	switch len(found) {
	case 0:
		return domain.Package{}, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, ""), "package", name)
	case 1:
		return r.load(found[0])
	default:
		err := zerr.With(zerr.Wrap(domain.ErrMultiplePackagesFound, ""), "package", name)
		return domain.Package{}, zerr.With(err, "files", found)
	}
}

// ListPackages loads every package file in the directory, sorted by name.
// Files that fail to load are skipped with a warning.
func (r *Repository) ListPackages(ctx context.Context) ([]domain.Package, error) {
	if err := r.checkDir(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read package directory"), "directory", r.dir)
	}

	var pkgs []domain.Package
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !slices.Contains(extensions, filepath.Ext(entry.Name())) {
			continue
		}

		pkg, err := r.load(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			r.warn("skipping " + entry.Name() + ": " + err.Error())
			continue
		}
		pkgs = append(pkgs, pkg)
	}

	slices.SortFunc(pkgs, func(a, b domain.Package) int {
		return strings.Compare(a.Name, b.Name)
	})
	return pkgs, nil
}

func (r *Repository) checkDir() error {
	info, err := os.Stat(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zerr.With(zerr.Wrap(domain.ErrPackageDirectoryNotFound, ""), "directory", r.dir)
		}
		return zerr.With(zerr.Wrap(err, "failed to stat package directory"), "directory", r.dir)
	}
	if !info.IsDir() {
		return zerr.With(zerr.Wrap(domain.ErrPackageDirectoryNotFound, "not a directory"), "directory", r.dir)
	}
	return nil
}

func (r *Repository) load(path string) (domain.Package, error) {
	//nolint:gosec // path is built from the configured package directory
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Package{}, zerr.With(zerr.Wrap(err, "failed to read package file"), "file", path)
	}

	pkg, digest, ok := r.cache.get(path, data)
	if ok {
		return pkg, nil
	}

	pkg, err = Decode(data, path)
	if err != nil {
		return domain.Package{}, err
	}

	r.cache.put(path, digest, &pkg)
	return pkg, nil
}

// Decode parses a package definition. A missing name defaults to the file's base name.
func Decode(data []byte, path string) (domain.Package, error) {
	var file PackageFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.Package{}, zerr.With(zerr.Wrap(domain.ErrInvalidPackage, err.Error()), "file", path)
	}

	name := file.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	envs := make(map[string]domain.EnvironmentConfig, len(file.Environments))
	for env, dto := range file.Environments {
		envs[env] = domain.EnvironmentConfig{
			Install:      dto.Install,
			Check:        dto.Check,
			Dependencies: dto.Dependencies,
		}
	}

	return domain.Package{
		Name:         name,
		Version:      file.Version,
		Homepage:     file.Homepage,
		Description:  file.Description,
		Environments: envs,
		Path:         path,
	}, nil
}

func (r *Repository) warn(msg string) {
	if r.logger != nil {
		r.logger.Warn(msg)
	}
}
