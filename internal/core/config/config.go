// Package config loads and resolves a rig configuration file: the
// human-authored mapping of archetypes, scripts, and per-data-kind file
// lists a Builder consumes.
//
// Grounded on internal/cue/values.go's multi-format loader, kept from the
// teacher, and rig_builder/builder.py's config/archetype handling in
// original_source/.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"

	"github.com/rigforge/rigforge/internal/cue"
	oerrors "github.com/rigforge/rigforge/internal/errors"
)

// RigConfig is the decoded form of a rig configuration file.
// Path-list fields are already resolved to absolute paths by Load.
type RigConfig struct {
	RigName       string   `json:"rigName"`
	BaseArchetype []string `json:"baseArchetype"`

	PreScript  []string `json:"preScript"`
	PostScript []string `json:"postScript"`
	PubScript  []string `json:"pubScript"`

	ModelFile     []string `json:"modelFile"`
	SkeletonPos   []string `json:"skeletonPos"`
	Guides        []string `json:"guides"`
	Components    []string `json:"components"`
	ControlShapes []string `json:"controlShapes"`
	PSD           []string `json:"psd"`
	SkinWeights   []string `json:"skinWeights"`
	DeformLayers  []string `json:"deformLayers"`
	Deformers     []string `json:"deformers"`
	Shapes        []string `json:"shapes"`

	OutputFile       string `json:"outputFile"`
	OutputFileType   string `json:"outputFileType"`
	OutputFileSuffix string `json:"outputFileSuffix"`

	// dir is the directory the config file was loaded from; every relative
	// path above is resolved against it.
	dir string

	// ArchetypePaths are additional search roots baseArchetype names are
	// resolved against, beyond the config's own directory (SUPPLEMENTED
	// FEATURES item 3, grounded on rig_builder/builder.py's CMPT_PATH-like
	// archetype resolution).
	ArchetypePaths []string `json:"-"`
}

// rawRigConfig mirrors RigConfig's wire shape before path-list coercion:
// §6.1 allows a single string wherever a path LIST is expected.
type rawRigConfig struct {
	RigName       string      `json:"rigName"`
	BaseArchetype stringsish  `json:"baseArchetype"`
	PreScript     stringsish  `json:"preScript"`
	PostScript    stringsish  `json:"postScript"`
	PubScript     stringsish  `json:"pubScript"`
	ModelFile     stringsish  `json:"modelFile"`
	SkeletonPos   stringsish  `json:"skeletonPos"`
	Guides        stringsish  `json:"guides"`
	Components    stringsish  `json:"components"`
	ControlShapes stringsish  `json:"controlShapes"`
	PSD           stringsish  `json:"psd"`
	SkinWeights   stringsish  `json:"skinWeights"`
	DeformLayers  stringsish  `json:"deformLayers"`
	Deformers     stringsish  `json:"deformers"`
	Shapes        stringsish  `json:"shapes"`

	OutputFile       string `json:"outputFile"`
	OutputFileType   string `json:"outputFileType"`
	OutputFileSuffix string `json:"outputFileSuffix"`
}

// stringsish decodes either a single JSON string or an array of strings
// into a []string: a single-string value is coerced to a single-element
// array.
type stringsish []string

func (s *stringsish) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = []string{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

// Loader loads and resolves rig configuration files of any of the
// teacher's supported formats (.cue, .yaml, .yml, .json).
type Loader struct {
	values         *cue.ValuesLoader
	archetypePaths []string
}

// NewLoader constructs a Loader. archetypePaths are extra search roots for
// resolving baseArchetype names that aren't bare filesystem paths.
func NewLoader(archetypePaths ...string) *Loader {
	return &Loader{
		values:         cue.NewValuesLoader(cuecontext.New()),
		archetypePaths: archetypePaths,
	}
}

// Load parses rigFilePath, resolves its archetype chain (depth-first,
// ancestor order), and returns the flattened, path-resolved RigConfig.
// Fails with ErrConfiguration when the file is missing or unparsable.
func (l *Loader) Load(ctx context.Context, rigFilePath string) (*RigConfig, error) {
	cfg, err := l.loadOne(ctx, rigFilePath)
	if err != nil {
		return nil, err
	}

	chain, err := l.resolveArchetypeChain(ctx, cfg, map[string]bool{rigFilePath: true})
	if err != nil {
		return nil, err
	}

	return mergeChain(append([]*RigConfig{cfg}, chain...)), nil
}

func (l *Loader) loadOne(ctx context.Context, path string) (*RigConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: rig file %s: %v", oerrors.ErrConfiguration, path, err)
	}

	value, err := l.values.LoadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: rig file %s: %v", oerrors.ErrConfiguration, path, err)
	}

	// Marshal the resolved CUE value back to JSON rather than calling
	// value.Decode directly, so stringsish's UnmarshalJSON (the §6.1
	// single-string-to-list coercion) runs through encoding/json instead
	// of CUE's own reflection-based decode.
	jsonBytes, err := value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: rig file %s: %v", oerrors.ErrConfiguration, path, err)
	}

	var raw rawRigConfig
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return nil, fmt.Errorf("%w: rig file %s: %v", oerrors.ErrConfiguration, path, err)
	}

	dir := filepath.Dir(path)
	cfg := &RigConfig{
		RigName:          raw.RigName,
		BaseArchetype:    []string(raw.BaseArchetype),
		PreScript:        resolveAll(dir, raw.PreScript),
		PostScript:       resolveAll(dir, raw.PostScript),
		PubScript:        resolveAll(dir, raw.PubScript),
		ModelFile:        resolveAll(dir, raw.ModelFile),
		SkeletonPos:      resolveAll(dir, raw.SkeletonPos),
		Guides:           resolveAll(dir, raw.Guides),
		Components:       resolveAll(dir, raw.Components),
		ControlShapes:    resolveAll(dir, raw.ControlShapes),
		PSD:              resolveAll(dir, raw.PSD),
		SkinWeights:      resolveAll(dir, raw.SkinWeights),
		DeformLayers:     resolveAll(dir, raw.DeformLayers),
		Deformers:        resolveAll(dir, raw.Deformers),
		Shapes:           resolveAll(dir, raw.Shapes),
		OutputFile:       resolveOne(dir, raw.OutputFile),
		OutputFileType:   raw.OutputFileType,
		OutputFileSuffix: raw.OutputFileSuffix,
		dir:              dir,
		ArchetypePaths:   l.archetypePaths,
	}
	return cfg, nil
}

// resolveAll resolves every path in paths against dir unless already
// absolute.
func resolveAll(dir string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolveOne(dir, p)
	}
	return out
}

func resolveOne(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// resolveArchetypeChain loads every ancestor archetype named in cfg's
// BaseArchetype (and, transitively, each ancestor's own BaseArchetype),
// depth-first, in declaration order. visited guards against archetype
// cycles.
func (l *Loader) resolveArchetypeChain(ctx context.Context, cfg *RigConfig, visited map[string]bool) ([]*RigConfig, error) {
	var chain []*RigConfig
	for _, name := range cfg.BaseArchetype {
		path, err := l.resolveArchetypePath(name)
		if err != nil {
			return nil, err
		}
		if visited[path] {
			return nil, fmt.Errorf("%w: archetype cycle at %s", oerrors.ErrConfiguration, path)
		}
		visited[path] = true

		ancestor, err := l.loadOne(ctx, path)
		if err != nil {
			return nil, err
		}
		chain = append(chain, ancestor)

		grandparents, err := l.resolveArchetypeChain(ctx, ancestor, visited)
		if err != nil {
			return nil, err
		}
		chain = append(chain, grandparents...)
	}
	return chain, nil
}

// resolveArchetypePath finds the rig file for a baseArchetype entry: if
// name is itself a path to an existing file, it's used directly;
// otherwise each ArchetypePaths root is tried as
// root/name/rig.<ext> (SUPPLEMENTED FEATURES item 3).
func (l *Loader) resolveArchetypePath(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	for _, root := range l.archetypePaths {
		for _, ext := range []string{".json", ".yaml", ".yml", ".cue"} {
			candidate := filepath.Join(root, name, "rig"+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: archetype %q not found in any search path", oerrors.ErrConfiguration, name)
}

// mergeChain flattens [cfg, ancestor1, ancestor2, ...] (nearest-first) into
// a single RigConfig. Scalar fields take the nearest (first) non-empty
// value. Script lists and ModelFile concatenate nearest-first with
// duplicates suppressed on first occurrence, since script execution order
// runs from the rig outward to its archetypes.
//
// The layered data-file lists (skeletonPos, guides, controlShapes, psd,
// skinWeights, deformLayers, deformers, shapes) feed GatherLayeredSaveData
// and loadEach as a fileStack, which spec §4.2 orders lowest-priority
// first, highest-priority last. They are built ancestor-first instead, so
// the rig's own file always lands last and its keys win on load and claim
// save ownership ahead of any archetype file.
func mergeChain(chain []*RigConfig) *RigConfig {
	out := &RigConfig{}
	for _, c := range chain {
		if out.RigName == "" {
			out.RigName = c.RigName
		}
		if out.OutputFile == "" {
			out.OutputFile = c.OutputFile
		}
		if out.OutputFileType == "" {
			out.OutputFileType = c.OutputFileType
		}
		if out.OutputFileSuffix == "" {
			out.OutputFileSuffix = c.OutputFileSuffix
		}
		out.PreScript = dedupAppend(out.PreScript, c.PreScript)
		out.PostScript = dedupAppend(out.PostScript, c.PostScript)
		out.PubScript = dedupAppend(out.PubScript, c.PubScript)
		out.ModelFile = dedupAppend(out.ModelFile, c.ModelFile)
		out.Components = dedupAppend(out.Components, c.Components)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		out.SkeletonPos = dedupAppend(out.SkeletonPos, c.SkeletonPos)
		out.Guides = dedupAppend(out.Guides, c.Guides)
		out.ControlShapes = dedupAppend(out.ControlShapes, c.ControlShapes)
		out.PSD = dedupAppend(out.PSD, c.PSD)
		out.SkinWeights = dedupAppend(out.SkinWeights, c.SkinWeights)
		out.DeformLayers = dedupAppend(out.DeformLayers, c.DeformLayers)
		out.Deformers = dedupAppend(out.Deformers, c.Deformers)
		out.Shapes = dedupAppend(out.Shapes, c.Shapes)
	}
	if len(chain) > 0 {
		out.dir = chain[0].dir
		out.ArchetypePaths = chain[0].ArchetypePaths
	}
	return out
}

func dedupAppend(dst []string, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range src {
		if !seen[v] {
			dst = append(dst, v)
			seen[v] = true
		}
	}
	return dst
}

// Dir returns the directory the rig configuration was loaded from.
func (c *RigConfig) Dir() string { return c.dir }

// ScriptKey names one of the three phase-script lists a rig configuration
// defines.
type ScriptKey string

const (
	ScriptPre  ScriptKey = "preScript"
	ScriptPost ScriptKey = "postScript"
	ScriptPub  ScriptKey = "pubScript"
)

// CollectScripts returns the already-flattened, nearest-first,
// duplicate-suppressed script list for key. The ordering
// and de-duplication happens once, in mergeChain, at Load time; this is
// the read accessor the Builder calls by name.
func (c *RigConfig) CollectScripts(key ScriptKey) []string {
	switch key {
	case ScriptPre:
		return c.PreScript
	case ScriptPost:
		return c.PostScript
	case ScriptPub:
		return c.PubScript
	default:
		return nil
	}
}

// Get returns a typed lookup of a recognized rig-config key, falling back
// to def when the field's value is its zero value. Unrecognized keys
// return def.
func (c *RigConfig) Get(key string, def any) any {
	switch key {
	case "rigName":
		if c.RigName != "" {
			return c.RigName
		}
	case "outputFile":
		if c.OutputFile != "" {
			return c.OutputFile
		}
	case "outputFileType":
		if c.OutputFileType != "" {
			return c.OutputFileType
		}
	case "outputFileSuffix":
		if c.OutputFileSuffix != "" {
			return c.OutputFileSuffix
		}
	}
	return def
}
