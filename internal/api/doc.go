// Package api provides the REST client for the gateway's
// connection-management API.
//
// Resource root: {baseURL}/api/connection
//
// Endpoints:
//   - GET    /{id}                       connection record
//   - GET    /{id}/history               usage history entries
//   - GET    /{id}/parameters            protocol parameter map
//   - POST   /                           create (response body = new identifier)
//   - POST   /{id}                       update
//   - PUT    /{id}?parentID={parent}     reparent
//   - DELETE /{id}                       delete
//
// Every request carries a token query parameter obtained from the client's
// TokenSource at call time.
package api
