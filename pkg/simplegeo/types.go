package simplegeo

import (
	"net/url"

	"github.com/mohammed-shakir/simplegeo-client/internal/core/endpoint"
	"github.com/mohammed-shakir/simplegeo-client/internal/core/model"
)

type (
	Record            = model.Record
	Geometry          = model.Geometry
	FeatureCollection = model.FeatureCollection
	IDs               = endpoint.IDs
	Hour              = endpoint.Hour
	Resolver          = endpoint.Resolver
	Options           = url.Values
)

var (
	Point  = model.Point
	Single = endpoint.Single
	Many   = endpoint.Many
	AtHour = endpoint.AtHour
	NoHour = endpoint.NoHour
)

const (
	DefaultRealm = endpoint.DefaultRealm
	APIVersion   = endpoint.APIVersion
)
