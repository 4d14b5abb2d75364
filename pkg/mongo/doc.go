// Package mongo connects the coordinator to an optional MongoDB
// deployment used as durable storage for save records. An empty
// MONGODB_URL means the process falls back to other storage.
package mongo
