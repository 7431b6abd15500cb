package manifest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/packforge/packforge/internal/ctxlog"
	"github.com/packforge/packforge/internal/fsutil"
	"github.com/packforge/packforge/internal/lockfile"
)

// Loader parses HCL manifest files into the Model.
type Loader struct{}

// NewLoader creates a new manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers every .hcl file under path (or path itself when it is a
// file), decodes the blocks, and merges them into a single validated Model.
// Relative source roots are resolved against the directory of the file that
// declared the project block.
func (l *Loader) Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("discovering manifest files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl manifest files found under %s", path)
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	model := &Model{Env: make(map[string]string)}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest file %s: %w", file, diags)
		}

		if err := l.merge(model, &root, filepath.Dir(file)); err != nil {
			return nil, fmt.Errorf("in manifest file %s: %w", file, err)
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Manifest loaded and translated into unified model.",
		"project", model.Project.Name, "dependencies", len(model.Locked))
	return model, nil
}

// merge folds one decoded file into the model. Singleton blocks may appear
// in at most one file.
func (l *Loader) merge(model *Model, root *fileRoot, dir string) error {
	if root.Project != nil {
		if model.Project.Name != "" {
			return fmt.Errorf("duplicate project block (already defined as %q)", model.Project.Name)
		}
		source := root.Project.Source
		if source == "" {
			source = "."
		}
		if !filepath.IsAbs(source) {
			source = filepath.Join(dir, source)
		}
		alias := root.Project.Alias
		if alias == "" {
			alias = "default"
		}
		model.Project = Project{
			Name:       root.Project.Name,
			Alias:      alias,
			Version:    root.Project.Version,
			SourceRoot: source,
			Exclude:    root.Project.Exclude,
		}
	}

	if root.Toolchain != nil {
		if model.Toolchain.Channel != "" {
			return fmt.Errorf("duplicate toolchain block")
		}
		model.Toolchain = Toolchain{Channel: root.Toolchain.Channel}
	}

	if root.Packages != nil {
		model.Packages.Build = append(model.Packages.Build, root.Packages.Build...)
		model.Packages.Link = append(model.Packages.Link, root.Packages.Link...)
		model.Packages.Darwin = append(model.Packages.Darwin, root.Packages.Darwin...)
	}

	for _, dep := range root.Dependencies {
		model.Locked = append(model.Locked, lockfile.Declaration{
			Name:    dep.Name,
			Version: dep.Version,
		})
	}

	if root.DevShell != nil {
		model.DevShell.Tools = append(model.DevShell.Tools, root.DevShell.Tools...)
	}

	model.Features = append(model.Features, root.Features...)

	if root.Formatter != "" {
		model.Formatter = root.Formatter
	}

	return l.mergeEnv(model, root)
}

// mergeEnv evaluates the optional env attribute into string bindings. The
// expression must be an object of string-convertible values.
func (l *Loader) mergeEnv(model *Model, root *fileRoot) error {
	if root.Env == nil {
		return nil
	}
	val, diags := root.Env.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("evaluating env attribute: %w", diags)
	}
	if val.IsNull() {
		return nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return fmt.Errorf("env attribute must be an object, got %s", val.Type().FriendlyName())
	}
	for key, v := range val.AsValueMap() {
		str, err := convert.Convert(v, cty.String)
		if err != nil {
			return fmt.Errorf("env value for %q is not a string: %w", key, err)
		}
		model.Env[key] = str.AsString()
	}
	return nil
}
