// Package redis connects the coordinator to an optional Redis instance
// used for durable session and save-record state. Connection setup
// retries with a configurable interval and exposes a readiness check for
// the health endpoint. An empty REDIS_URL means the process runs on
// in-memory storage instead.
package redis
