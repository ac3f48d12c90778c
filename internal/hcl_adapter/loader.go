package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/tickgrid/internal/config"
	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/fsutil"
	"github.com/specialistvlad/tickgrid/internal/hclutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges all discovered blocks
// into one model. Files are processed in the order they are found, so
// entities and scenes keep their declaration order. A bad file or block does
// not stop the load: every problem is collected and reported in one error.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.NewModel()

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	evalCtx := hclutil.EvalContext()
	var problems problemList

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			problems.add("failed to parse HCL file "+file, diags)
			continue
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			problems.add("failed to decode HCL file "+file, diags)
			continue
		}

		for _, b := range root.Behaviours {
			if existing, ok := model.Behaviours[b.Kind]; ok {
				problems.addf("%s: duplicate behaviour %q, already declared in %s", b.DefRange, b.Kind, existing.FilePath)
				continue
			}
			def, diags := translateBehaviour(ctx, b, evalCtx)
			if diags.HasErrors() {
				problems.add(fmt.Sprintf("failed to load behaviour %q", b.Kind), diags)
				continue
			}
			def.FilePath = file
			model.Behaviours[def.Kind] = def
		}
		for _, e := range root.Entities {
			ent, diags := translateEntity(e, evalCtx)
			if diags.HasErrors() {
				problems.add(fmt.Sprintf("failed to load entity %q", e.Name), diags)
				continue
			}
			ent.FilePath = file
			model.Entities = append(model.Entities, ent)
		}
		for _, s := range root.Scenes {
			scene, diags := translateScene(s, evalCtx)
			if diags.HasErrors() {
				problems.add(fmt.Sprintf("failed to load scene %q", s.Name), diags)
				continue
			}
			for _, ent := range scene.Entities {
				ent.FilePath = file
			}
			model.Scenes = append(model.Scenes, scene)
		}
	}

	if err := problems.err(); err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.", "behaviours", len(model.Behaviours), "entities", len(model.Entities), "scenes", len(model.Scenes))
	return model, nil
}

// problemList collects load failures. hcl.Diagnostics.Error only prints the
// first diagnostic, so each one is kept as its own line.
type problemList []string

func (p *problemList) add(where string, diags hcl.Diagnostics) {
	for _, d := range diags.Errs() {
		*p = append(*p, where+": "+d.Error())
	}
}

func (p *problemList) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problemList) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("manifest loading failed:\n- %s", strings.Join(p, "\n- "))
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, p := range found {
				add(p)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return allFiles, nil
}

// diagError builds a single error diagnostic.
func diagError(summary, detail string, subject *hcl.Range) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  subject,
	}}
}
