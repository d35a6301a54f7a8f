package session

import (
	"fmt"

	"screenshot-ocr/src/geometry"
)

// FeatureKind names an input feature attached to the overlay.
type FeatureKind int

const (
	AreaSelection FeatureKind = iota + 1
)

func (k FeatureKind) String() string {
	switch k {
	case AreaSelection:
		return "area-selection"
	default:
		return fmt.Sprintf("feature(%d)", int(k))
	}
}

// Feature consumes pointer input and exposes the rectangle to outline.
// *selection.Controller implements it.
type Feature interface {
	Move(p geometry.Point)
	Release()
	Current() (geometry.Rectangle, bool)
}

type features struct {
	byKind map[FeatureKind]Feature
}

func newFeatures() *features {
	return &features{byKind: make(map[FeatureKind]Feature)}
}

func (f *features) attach(kind FeatureKind, feat Feature) error {
	if _, ok := f.byKind[kind]; ok {
		return fmt.Errorf("feature %s already attached", kind)
	}
	f.byKind[kind] = feat
	return nil
}

func (f *features) get(kind FeatureKind) (Feature, bool) {
	feat, ok := f.byKind[kind]
	return feat, ok
}
