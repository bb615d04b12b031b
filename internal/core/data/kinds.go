package data

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rigforge/rigforge/internal/core/scene"
)

// registerBuiltinKinds populates reg with every concrete data kind,
// including the deform layer kind grounded on deformLayer.py.
func registerBuiltinKinds(reg *Registry) {
	reg.Register("Abstract", func() Handler { return NewAbstractData() })
	reg.Register("Joint", func() Handler { return NewJointData() })
	reg.Register("Guide", func() Handler { return NewGuideData() })
	reg.Register("ControlShape", func() Handler { return NewControlShapeData() })
	reg.Register("SkinWeights", func() Handler { return NewSkinWeightsData() })
	reg.Register("PSD", func() Handler { return NewPSDData() })
	reg.Register("DeformLayer", func() Handler { return NewDeformLayerData() })
	reg.Register("Deformer", func() Handler { return NewDeformerData() })
	reg.Register("Shape", func() Handler { return NewShapeData() })
}

// AbstractData is compatible with any dataType tag:
// it carries no kind-specific payload and never fails the dataType filter
// in gatherLayeredSaveData. Gathering copies whatever attributes the scene
// exposes under "abstractPayload"; applying writes them back verbatim.
type AbstractData struct{ Base }

func NewAbstractData() *AbstractData { return &AbstractData{Base: NewBase(AbstractDataType)} }

func (d *AbstractData) GatherData(s scene.Scene, entity scene.Handle) error {
	v, ok, err := s.GetAttr(context.Background(), entity, "abstractPayload")
	if err != nil {
		return err
	}
	if !ok {
		v = map[string]any{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	d.Set(string(entity), raw)
	return nil
}

func (d *AbstractData) ApplyData(s scene.Scene, keys []string) error {
	return applyEach(d, s, keys, func(s scene.Scene, entity scene.Handle, payload Payload) error {
		var v any
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		return s.SetAttr(context.Background(), entity, "abstractPayload", v)
	})
}

// JointPayload is the per-joint record: a local transform and an optional
// bind-pose parent reference (opaque entity identifier).
type JointPayload struct {
	Translate [3]float64 `json:"translate"`
	Rotate    [3]float64 `json:"rotate"`
	Scale     [3]float64 `json:"scale"`
	Parent    string     `json:"parent,omitempty"`
}

// JointData handles the skeletonPos data kind: joint positions captured
// before BUILD and re-applied on load.
type JointData struct{ Base }

func NewJointData() *JointData { return &JointData{Base: NewBase("Joint")} }

func (d *JointData) GatherData(s scene.Scene, entity scene.Handle) error {
	return gatherTransformLike(&d.Base, s, entity, "jointTransform")
}

func (d *JointData) ApplyData(s scene.Scene, keys []string) error {
	return applyTransformLike(&d.Base, s, keys, "jointTransform")
}

// GuideData handles editable guide transforms the user poses before BUILD.
type GuideData struct{ Base }

func NewGuideData() *GuideData { return &GuideData{Base: NewBase("Guide")} }

func (d *GuideData) GatherData(s scene.Scene, entity scene.Handle) error {
	return gatherTransformLike(&d.Base, s, entity, "guideTransform")
}

func (d *GuideData) ApplyData(s scene.Scene, keys []string) error {
	return applyTransformLike(&d.Base, s, keys, "guideTransform")
}

// ControlShapePayload stores the curve-shape points of a control, keyed by
// shape name for multi-shape controls.
type ControlShapePayload struct {
	Shapes map[string][][3]float64 `json:"shapes"`
	Color  int                     `json:"color,omitempty"`
}

// ControlShapeData handles control-curve shapes saved after FINALIZE and
// re-applied on subsequent builds.
type ControlShapeData struct{ Base }

func NewControlShapeData() *ControlShapeData {
	return &ControlShapeData{Base: NewBase("ControlShape")}
}

func (d *ControlShapeData) GatherData(s scene.Scene, entity scene.Handle) error {
	v, ok, err := s.GetAttr(context.Background(), entity, "controlShape")
	if err != nil {
		return err
	}
	payload := ControlShapePayload{Shapes: map[string][][3]float64{}}
	if ok {
		if m, isMap := v.(ControlShapePayload); isMap {
			payload = m
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	d.Set(string(entity), raw)
	return nil
}

func (d *ControlShapeData) ApplyData(s scene.Scene, keys []string) error {
	return applyEach(d, s, keys, func(s scene.Scene, entity scene.Handle, payload Payload) error {
		var v ControlShapePayload
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		return s.SetAttr(context.Background(), entity, "controlShape", v)
	})
}

// SkinWeightsPayload holds per-influence weight maps for one mesh.
type SkinWeightsPayload struct {
	Influences []string           `json:"influences"`
	Weights    map[string][]float64 `json:"weights"` // influence -> per-vertex weight
}

// SkinWeightsData is the archetype multi-file data kind: each
// mesh's skin weights are typically stored in their own file under a
// directory, loaded via LoadDirectory.
type SkinWeightsData struct{ Base }

func NewSkinWeightsData() *SkinWeightsData {
	return &SkinWeightsData{Base: NewBase("SkinWeights")}
}

func (d *SkinWeightsData) GatherData(s scene.Scene, entity scene.Handle) error {
	v, ok, err := s.GetAttr(context.Background(), entity, "skinWeights")
	if err != nil {
		return err
	}
	payload := SkinWeightsPayload{Weights: map[string][]float64{}}
	if ok {
		if p, isPayload := v.(SkinWeightsPayload); isPayload {
			payload = p
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	d.Set(string(entity), raw)
	return nil
}

func (d *SkinWeightsData) ApplyData(s scene.Scene, keys []string) error {
	return applyEach(d, s, keys, func(s scene.Scene, entity scene.Handle, payload Payload) error {
		var v SkinWeightsPayload
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		return s.SetAttr(context.Background(), entity, "skinWeights", v)
	})
}

// PSDData handles pose-space-deformer readers.
type PSDData struct{ Base }

func NewPSDData() *PSDData { return &PSDData{Base: NewBase("PSD")} }

func (d *PSDData) GatherData(s scene.Scene, entity scene.Handle) error {
	return gatherAttrBlob(&d.Base, s, entity, "poseReader")
}

func (d *PSDData) ApplyData(s scene.Scene, keys []string) error {
	return applyAttrBlob(&d.Base, s, keys, "poseReader")
}

// DeformLayerPayload is a named, ordered list of deformer names forming
// one layer on a mesh (SUPPLEMENTED FEATURES item 5, grounded on
// deformLayer.py).
type DeformLayerPayload struct {
	Order     int      `json:"order"`
	Deformers []string `json:"deformers"`
}

// DeformLayerData handles the deformLayers data kind: the ordering and
// stacking mechanism for named deformer layers per mesh.
type DeformLayerData struct{ Base }

func NewDeformLayerData() *DeformLayerData {
	return &DeformLayerData{Base: NewBase("DeformLayer")}
}

func (d *DeformLayerData) GatherData(s scene.Scene, entity scene.Handle) error {
	return gatherAttrBlob(&d.Base, s, entity, "deformLayer")
}

func (d *DeformLayerData) ApplyData(s scene.Scene, keys []string) error {
	return applyAttrBlob(&d.Base, s, keys, "deformLayer")
}

// DeformerData handles individual deformer setups within a layer.
type DeformerData struct{ Base }

func NewDeformerData() *DeformerData { return &DeformerData{Base: NewBase("Deformer")} }

func (d *DeformerData) GatherData(s scene.Scene, entity scene.Handle) error {
	return gatherAttrBlob(&d.Base, s, entity, "deformer")
}

func (d *DeformerData) ApplyData(s scene.Scene, keys []string) error {
	return applyAttrBlob(&d.Base, s, keys, "deformer")
}

// ShapeData handles blendshape/corrective shape payloads.
type ShapeData struct{ Base }

func NewShapeData() *ShapeData { return &ShapeData{Base: NewBase("Shape")} }

func (d *ShapeData) GatherData(s scene.Scene, entity scene.Handle) error {
	return gatherAttrBlob(&d.Base, s, entity, "shape")
}

func (d *ShapeData) ApplyData(s scene.Scene, keys []string) error {
	return applyAttrBlob(&d.Base, s, keys, "shape")
}

// gatherTransformLike captures a JointPayload-shaped transform under attr
// and stores it keyed by entity, shared by JointData and GuideData.
func gatherTransformLike(b *Base, s scene.Scene, entity scene.Handle, attr string) error {
	v, ok, err := s.GetAttr(context.Background(), entity, attr)
	if err != nil {
		return err
	}
	payload := JointPayload{}
	if ok {
		if p, isPayload := v.(JointPayload); isPayload {
			payload = p
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.Set(string(entity), raw)
	return nil
}

func applyTransformLike(b *Base, s scene.Scene, keys []string, attr string) error {
	return applyEach(b, s, keys, func(s scene.Scene, entity scene.Handle, payload Payload) error {
		var v JointPayload
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		return s.SetAttr(context.Background(), entity, attr, v)
	})
}

// gatherAttrBlob is the generic fallback for kinds whose payload is an
// opaque blob the core never interprets (PSD, deform layers, deformers,
// shapes): it round-trips whatever value the scene returns as JSON.
func gatherAttrBlob(b *Base, s scene.Scene, entity scene.Handle, attr string) error {
	v, ok, err := s.GetAttr(context.Background(), entity, attr)
	if err != nil {
		return err
	}
	if !ok {
		v = map[string]any{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.Set(string(entity), raw)
	return nil
}

func applyAttrBlob(b *Base, s scene.Scene, keys []string, attr string) error {
	return applyEach(b, s, keys, func(s scene.Scene, entity scene.Handle, payload Payload) error {
		var v any
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		return s.SetAttr(context.Background(), entity, attr, v)
	})
}

// applyEach resolves keys (empty means "every stored key") and invokes fn
// per key, surfacing the first error encountered with its key attached.
func applyEach(b interface {
	GetKeys() []string
	Get(string) (Payload, bool)
}, s scene.Scene, keys []string, fn func(scene.Scene, scene.Handle, Payload) error) error {
	if len(keys) == 0 {
		keys = b.GetKeys()
	}
	for _, k := range keys {
		payload, ok := b.Get(k)
		if !ok {
			continue
		}
		if err := fn(s, scene.Handle(k), payload); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}
