// Package service contains the request-mediation logic of the gateway:
// client-key authorization, the shared upstream token cache, query
// sanitization, and vector-tile style rewriting.
//
// Services define interfaces for their storage and upstream dependencies
// so they can be exercised without a live registry or portal.
package service
