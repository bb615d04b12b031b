package component

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rigforge/rigforge/internal/core/scene"
)

// SceneStore is a ParameterStore backed by attributes on a scene node (the
// component's metaNode). Define always writes the given value, replacing
// any stored one; values already on the node are not read back to
// override the ones passed in.
type SceneStore struct {
	scene scene.Scene
	node  scene.Handle
	ctx   context.Context
}

// NewSceneStore wraps node (expected to already exist) as a ParameterStore.
func NewSceneStore(ctx context.Context, s scene.Scene, node scene.Handle) *SceneStore {
	return &SceneStore{scene: s, node: node, ctx: ctx}
}

const metaAttrPrefix = "param_"

func (m *SceneStore) Define(name string, value Value) error {
	attr := metaAttrPrefix + name
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}
	if _, ok, err := m.scene.GetAttr(m.ctx, m.node, attr); err != nil {
		return err
	} else if !ok {
		if err := m.scene.AddAttr(m.ctx, m.node, attr, scene.AttrString); err != nil {
			return err
		}
	}
	return m.scene.SetAttr(m.ctx, m.node, attr, encoded)
}

func (m *SceneStore) Get(name string) (Value, bool) {
	attr := metaAttrPrefix + name
	v, ok, err := m.scene.GetAttr(m.ctx, m.node, attr)
	if err != nil || !ok {
		return Value{}, false
	}
	encoded, ok := v.(string)
	if !ok {
		return Value{}, false
	}
	value, err := decodeValue(encoded)
	if err != nil {
		return Value{}, false
	}
	return value, true
}

func (m *SceneStore) Names() []string {
	// The fake scene facade has no attribute-enumeration primitive (spec
	// §6.3 lists no "list attrs" collaborator), so SceneStore always
	// returns nil here; the Instance's Entry.Parameters holds the names
	// supplied at construction time.
	return nil
}

// encodeValue/decodeValue round-trip a Value through a single string
// attribute, since the Scene facade only promises scalar and
// string-list attribute storage, not arbitrary structured values.
type wireValue struct {
	Type DataType          `json:"type"`
	Str  string            `json:"str,omitempty"`
	Int  int               `json:"int,omitempty"`
	Flt  float64           `json:"flt,omitempty"`
	Bool bool              `json:"bool,omitempty"`
	List []string          `json:"list,omitempty"`
	Dict map[string]string `json:"dict,omitempty"`
}

func encodeValue(v Value) (string, error) {
	raw, err := json.Marshal(wireValue{
		Type: v.Type, Str: v.Str, Int: v.Int, Flt: v.Flt,
		Bool: v.Bool, List: v.List, Dict: v.Dict,
	})
	if err != nil {
		return "", fmt.Errorf("encoding parameter: %w", err)
	}
	return string(raw), nil
}

func decodeValue(s string) (Value, error) {
	var w wireValue
	if err := json.Unmarshal([]byte(s), &w); err != nil {
		return Value{}, fmt.Errorf("decoding parameter: %w", err)
	}
	return Value{
		Type: w.Type, Str: w.Str, Int: w.Int, Flt: w.Flt,
		Bool: w.Bool, List: w.List, Dict: w.Dict,
	}, nil
}
