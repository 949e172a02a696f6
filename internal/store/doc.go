// Package store provides the hubs.Database backends: an in-memory map, a
// directory of JSON documents (temp file + rename writes), MySQL through
// database/sql, and PostgreSQL through pgxpool. Open picks one from the
// Store section of the config.
package store
