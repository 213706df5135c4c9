// Package model defines the records and envelopes exchanged with the SimpleGeo API.
package model

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	TypeFeature           = "Feature"
	TypeFeatureCollection = "FeatureCollection"
	DefaultObjectType     = "object"
)

type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
}

// Point builds a GeoJSON point; coordinates are stored as [lon, lat].
func Point(lat, lon float64) Geometry {
	b, _ := json.Marshal([2]float64{lon, lat})
	return Geometry{Type: "Point", Coordinates: b}
}

// LatLon returns the position of a Point geometry.
func (g Geometry) LatLon() (lat, lon float64, ok bool) {
	if g.Type != "Point" || len(g.Coordinates) == 0 {
		return 0, 0, false
	}
	var c []float64
	if err := json.Unmarshal(g.Coordinates, &c); err != nil || len(c) < 2 {
		return 0, 0, false
	}
	return c[1], c[0], true
}

// Record is a single feature stored in a layer.
type Record struct {
	Layer      string
	ID         string
	Type       string
	Created    int64
	Geometry   Geometry
	Properties map[string]any
}

type wireRecord struct {
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	Created    int64          `json:"created,omitempty"`
	Geometry   *Geometry      `json:"geometry,omitempty"`
	Properties map[string]any `json:"properties"`
}

func (r Record) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Layer, validation.Required.Error("record has no layer")),
	)
}

// Feature returns the wire representation; layer and type live in properties.
func (r Record) Feature() map[string]any {
	props := make(map[string]any, len(r.Properties)+2)
	for k, v := range r.Properties {
		props[k] = v
	}
	if r.Layer != "" {
		props["layer"] = r.Layer
	}
	typ := r.Type
	if typ == "" {
		typ = DefaultObjectType
	}
	props["type"] = typ

	out := map[string]any{
		"type":       TypeFeature,
		"properties": props,
	}
	if r.ID != "" {
		out["id"] = r.ID
	}
	if r.Created != 0 {
		out["created"] = r.Created
	}
	if r.Geometry.Type != "" {
		out["geometry"] = r.Geometry
	}
	return out
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Feature())
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var w wireRecord
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	*r = Record{ID: w.ID, Created: w.Created}
	if w.Geometry != nil {
		r.Geometry = *w.Geometry
	}
	props := make(map[string]any, len(w.Properties))
	for k, v := range w.Properties {
		switch k {
		case "layer":
			if s, ok := v.(string); ok {
				r.Layer = s
				continue
			}
		case "type":
			if s, ok := v.(string); ok {
				r.Type = s
				continue
			}
		}
		props[k] = v
	}
	r.Properties = props
	return nil
}

// ParseRecord converts an already decoded JSON value into a Record.
func ParseRecord(v any) (Record, error) {
	var r Record
	if v == nil {
		return r, fmt.Errorf("decode record: empty response")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return r, fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, err
	}
	return r, nil
}

type FeatureCollection struct {
	Type     string           `json:"type"`
	Features []map[string]any `json:"features"`
}

// NewFeatureCollection wraps records in input order.
func NewFeatureCollection(records []Record) FeatureCollection {
	fc := FeatureCollection{
		Type:     TypeFeatureCollection,
		Features: make([]map[string]any, 0, len(records)),
	}
	for _, r := range records {
		fc.Features = append(fc.Features, r.Feature())
	}
	return fc
}
