// Package hubs defines the Hub entity and the Database contract the HTTP layer
// depends on. Implementations live in internal/store; handlers only see the
// interface, so any backend (memory, file, mysql, postgres, or a test fake)
// can serve the routes unchanged.
package hubs
