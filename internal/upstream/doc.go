// Package upstream implements the HTTP client for the ArcGIS Online
// REST APIs: the generateToken credential exchange, feature-layer
// queries, and vector-tile resource fetches.
//
// Credentials are resolved from the environment at exchange time and
// never logged; the upstream token travels only as a request parameter
// to the upstream host.
package upstream
