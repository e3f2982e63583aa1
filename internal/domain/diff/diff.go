// Package diff implements the pure value algebra behind change capture:
// reducing two snapshots to a minimal before-image diff and merging diffs
// back into a combined state mapping. Nothing here touches storage.
package diff

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
)

// Reduce compares two snapshots and returns, for every key of before whose
// value structurally differs from after's, the *prior* value. A key missing
// from after counts as changed. Nested mappings are reduced field by field;
// sequences are compared as whole values. A key whose prior value was
// explicitly nil stays in the result as nil, which is distinct from the key
// being absent. An empty result means no observable change.
func Reduce(before, after map[string]any) map[string]any {
	out := make(map[string]any)
	for key, prior := range before {
		next, present := after[key]
		if !present {
			out[key] = prior

			continue
		}

		priorMap, priorIsMap := prior.(map[string]any)
		nextMap, nextIsMap := next.(map[string]any)
		if priorIsMap && nextIsMap {
			if nested := Reduce(priorMap, nextMap); len(nested) > 0 {
				out[key] = nested
			}

			continue
		}

		if !reflect.DeepEqual(prior, next) {
			out[key] = prior
		}
	}

	return out
}

// Merge combines two diffs into one mapping containing every key of both.
// When a key holds nested mappings on both sides they are merged
// recursively; otherwise overlay's value wins whenever overlay has the key.
// A nil base is treated as empty. Inputs are never mutated, and folding a
// chain with Merge is order-stable: the result depends only on the sequence
// of layers, not on how the fold is associated.
func Merge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, overlayValue := range overlay {
		if baseValue, present := out[key]; present {
			baseMap, baseIsMap := baseValue.(map[string]any)
			overlayMap, overlayIsMap := overlayValue.(map[string]any)
			if baseIsMap && overlayIsMap {
				out[key] = Merge(baseMap, overlayMap)

				continue
			}
		}
		out[key] = overlayValue
	}

	return out
}

// Normalize round-trips a snapshot through JSON so that values captured from
// live entities compare structurally against values read back from persisted
// payloads (integers become float64, nested structs become maps). Reduce and
// Merge callers normalize both sides before comparing.
func Normalize(snapshot map[string]any) (map[string]any, error) {
	if snapshot == nil {
		return map[string]any{}, nil
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "marshal snapshot")
	}

	var normalized map[string]any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, errors.Wrap(err, "unmarshal snapshot")
	}

	return normalized, nil
}
