// Package endpoint builds the resource paths of the SimpleGeo API.
package endpoint

import (
	"strconv"
	"strings"
)

const (
	DefaultRealm = "http://api.simplegeo.com"
	APIVersion   = "0.1"
)

// IDs is one or more record identifiers, rendered comma separated in order.
type IDs []string

func Single(id string) IDs { return IDs{id} }

func Many(ids ...string) IDs { return IDs(ids) }

func (ids IDs) String() string { return strings.Join(ids, ",") }

// Hour optionally narrows a density query to a single hour of the day.
type Hour struct {
	h  int
	ok bool
}

var NoHour = Hour{}

func AtHour(h int) Hour { return Hour{h: h, ok: true} }

func (h Hour) Get() (int, bool) { return h.h, h.ok }

type Resolver struct {
	Realm string
}

var Default = Resolver{Realm: DefaultRealm}

func New(realm string) Resolver {
	if strings.TrimSpace(realm) == "" {
		realm = DefaultRealm
	}
	return Resolver{Realm: strings.TrimRight(realm, "/")}
}

func (r Resolver) url(path string) string {
	realm := r.Realm
	if realm == "" {
		realm = DefaultRealm
	}
	return strings.Join([]string{realm, APIVersion, path}, "/")
}

func (r Resolver) Record(layer, id string) string {
	return r.url("records/" + layer + "/" + id + ".json")
}

func (r Resolver) Records(layer string, ids IDs) string {
	return r.url("records/" + layer + "/" + ids.String() + ".json")
}

func (r Resolver) AddRecords(layer string) string {
	return r.url("records/" + layer + ".json")
}

func (r Resolver) History(layer, id string) string {
	return r.url("records/" + layer + "/" + id + "/history.json")
}

func (r Resolver) Nearby(layer, geohash string) string {
	return r.url("records/" + layer + "/nearby/" + geohash + ".json")
}

func (r Resolver) NearbyLatLon(layer string, lat, lon float64) string {
	return r.url("records/" + layer + "/nearby/" + coords(lat, lon) + ".json")
}

func (r Resolver) NearbyAddress(lat, lon float64) string {
	return r.url("nearby/address/" + coords(lat, lon) + ".json")
}

// Density selects the day-wide path for NoHour and the hourly path otherwise.
func (r Resolver) Density(lat, lon float64, day string, hour Hour) string {
	if h, ok := hour.Get(); ok {
		return r.url("density/" + day + "/" + strconv.Itoa(h) + "/" + coords(lat, lon) + ".json")
	}
	return r.url("density/" + day + "/" + coords(lat, lon) + ".json")
}

func (r Resolver) Layer(layer string) string {
	return r.url("layer/" + layer + ".json")
}

func (r Resolver) Contains(lat, lon float64) string {
	return r.url("contains/" + coords(lat, lon) + ".json")
}

func (r Resolver) Overlaps(south, west, north, east float64) string {
	return r.url("overlaps/" + coords(south, west, north, east) + ".json")
}

func (r Resolver) Boundary(id string) string {
	return r.url("boundary/" + id + ".json")
}

func Record(layer, id string) string { return Default.Record(layer, id) }
func Records(layer string, ids IDs) string { return Default.Records(layer, ids) }
func AddRecords(layer string) string { return Default.AddRecords(layer) }
func History(layer, id string) string { return Default.History(layer, id) }
func Nearby(layer, geohash string) string { return Default.Nearby(layer, geohash) }
func NearbyAddress(lat, lon float64) string { return Default.NearbyAddress(lat, lon) }
func Layer(layer string) string { return Default.Layer(layer) }
func Contains(lat, lon float64) string { return Default.Contains(lat, lon) }
func Boundary(id string) string { return Default.Boundary(id) }
func NearbyLatLon(layer string, lat, lon float64) string {
	return Default.NearbyLatLon(layer, lat, lon)
}

func Density(lat, lon float64, day string, hour Hour) string {
	return Default.Density(lat, lon, day, hour)
}

func Overlaps(south, west, north, east float64) string {
	return Default.Overlaps(south, west, north, east)
}

// no rounding: precision is whatever the caller passed in
func coords(vs ...float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
