package data

import (
	"fmt"
	"os"

	oerrors "github.com/rigforge/rigforge/internal/errors"
)

// FileEntry is one file's share of a LayeredDataInfo plan.
// Invariant: all three lists are non-nil once constructed by
// GatherLayeredSaveData, even if empty — ValidateLayeredSaveData rejects a
// nil list as a missing entry.
type FileEntry struct {
	Changed []string `json:"changed"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// Plan is the file -> {changed, added, removed} map, also known as
// LayeredDataInfo.
type Plan map[string]*FileEntry

// newEntry returns a FileEntry with all three lists initialized empty
// (never nil), matching FileEntry's non-nil invariant.
func newEntry() *FileEntry {
	return &FileEntry{Changed: []string{}, Added: []string{}, Removed: []string{}}
}

// ValidateLayeredSaveData rejects a plan missing {changed, added, removed}
// in any entry, or an empty plan, with ErrInvalidLayeredPlan.
func ValidateLayeredSaveData(plan Plan) error {
	if len(plan) == 0 {
		return fmt.Errorf("%w: plan is empty", oerrors.ErrInvalidLayeredPlan)
	}
	for file, entry := range plan {
		if entry == nil || entry.Changed == nil || entry.Added == nil || entry.Removed == nil {
			return fmt.Errorf("%w: %s missing changed/added/removed", oerrors.ErrInvalidLayeredPlan, file)
		}
	}
	return nil
}

// GatherLayeredSaveData builds a save Plan for dataToSave against
// fileStack, following this algorithm:
//
//  1. Reject unregistered dataType or unknown method.
//  2. Filter fileStack to files whose on-disk dataType matches dataType or
//     is AbstractDataType.
//  3. Read each filtered file's keys.
//  4. Initialize an empty plan entry per filtered file.
//  5. Walk the filtered stack in reverse (bottom-priority first): a key
//     still wanted and unclaimed is "changed" and claimed by that file;
//     a key no longer wanted is "removed".
//  6. Keys in dataToSave that were never claimed are "unsaved".
//  7. Dispatch unsaved keys per method.
//
// fileStack is ordered lowest-priority first, highest-priority last; "the
// bottom of the stack" in spec prose is fileStack's last element.
func GatherLayeredSaveData(reg *Registry, dataType string, fileStack []string, dataToSave []string, method MergeMethod, fileName string) (Plan, error) {
	if !reg.Has(dataType) {
		return nil, fmt.Errorf("%w: %s", oerrors.ErrUnknownDataType, dataType)
	}
	switch method {
	case MethodMerge, MethodNew, MethodOverwrite:
	default:
		return nil, fmt.Errorf("%w: %s", oerrors.ErrInvalidMergeMethod, method)
	}
	if (method == MethodNew || method == MethodOverwrite) && fileName == "" {
		return nil, fmt.Errorf("%w: method %s requires fileName", oerrors.ErrMissingTargetFile, method)
	}

	// Step 2: filter the stack to matching dataType files.
	filtered, err := filterStackByType(fileStack, dataType)
	if err != nil {
		return nil, err
	}

	// Step 3+4: read keys, seed empty entries.
	sourceKeys := make(map[string][]string, len(filtered))
	plan := make(Plan, len(filtered))
	for _, f := range filtered {
		keys, err := readFileKeys(reg, dataType, f)
		if err != nil {
			return nil, err
		}
		sourceKeys[f] = keys
		plan[f] = newEntry()
	}

	want := newStringSet(dataToSave)
	claimed := make(stringSet)

	// Step 5: walk in reverse — filtered's last element is the bottom of
	// the stack (lowest index = lowest priority per spec, so the
	// *highest*-priority file sits last; "reverse (bottom-priority first)"
	// means we start at the end of filtered and walk toward the front).
	for i := len(filtered) - 1; i >= 0; i-- {
		f := filtered[i]
		entry := plan[f]
		for _, k := range sourceKeys[f] {
			if want.has(k) && !claimed.has(k) {
				entry.Changed = append(entry.Changed, k)
				claimed[k] = struct{}{}
			} else if !want.has(k) {
				entry.Removed = append(entry.Removed, k)
			}
		}
		sortInPlace(entry.Changed)
		sortInPlace(entry.Removed)
	}

	// Step 6: unsaved = dataToSave \ claimed.
	var unsaved []string
	for _, k := range want.sorted() {
		if !claimed.has(k) {
			unsaved = append(unsaved, k)
		}
	}

	// Step 7: dispatch by method.
	switch method {
	case MethodMerge:
		if len(filtered) == 0 {
			return nil, fmt.Errorf("%w: merge requires a non-empty fileStack", oerrors.ErrInvalidLayeredPlan)
		}
		bottom := filtered[len(filtered)-1]
		plan[bottom].Added = append(plan[bottom].Added, unsaved...)
		sortInPlace(plan[bottom].Added)
	case MethodNew:
		entry, ok := plan[fileName]
		if !ok {
			entry = newEntry()
			plan[fileName] = entry
		}
		entry.Added = append(entry.Added, unsaved...)
		sortInPlace(entry.Added)
	case MethodOverwrite:
		for _, entry := range plan {
			entry.Changed = []string{}
			entry.Added = []string{}
		}
		sorted := want.sorted()
		plan[fileName] = &FileEntry{Changed: []string{}, Added: sorted, Removed: []string{}}
	}

	return plan, nil
}

func sortInPlace(s []string) {
	if len(s) < 2 {
		return
	}
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// filterStackByType returns the subset of fileStack whose on-disk dataType
// equals dataType or AbstractDataType, preserving order. A file that does
// not exist on disk is treated as an empty layer (no keys) rather than an
// error, so saving into a fresh archetype layer works.
func filterStackByType(fileStack []string, dataType string) ([]string, error) {
	var out []string
	for _, f := range fileStack {
		if !fileExists(f) {
			out = append(out, f)
			continue
		}
		tag, err := peekDataType(f)
		if err != nil {
			return nil, err
		}
		if tag != dataType && tag != AbstractDataType {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readFileKeys returns the entity keys stored in a data file, or an empty
// slice if the file does not exist yet (a not-yet-created archetype
// layer).
func readFileKeys(reg *Registry, dataType, path string) ([]string, error) {
	if !fileExists(path) {
		return nil, nil
	}
	h, err := reg.NewInstance(dataType)
	if err != nil {
		return nil, err
	}
	if err := h.Read(path); err != nil {
		return nil, err
	}
	return h.GetKeys(), nil
}
