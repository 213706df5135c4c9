// Package simplegeo is a client for the SimpleGeo records, layer, boundary,
// density and proximity API.
//
// A Client owns its own connection: credentials are set with SetCredentials
// and every resource call fails with ErrNoConnection until then.
//
//	c := simplegeo.New()
//	c.SetCredentials(token, secret)
//	rec, err := c.GetRecord(ctx, "com.example.layer", "abc")
//
// Paths are built by the endpoint resolver; see Resolver for the exact shapes.
package simplegeo
