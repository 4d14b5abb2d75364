// Package server exposes the coordinator over HTTP: a websocket endpoint
// that page contexts and the web app connect to, and a health endpoint.
//
// Each websocket connection is one page context. Connections that present
// a page_url are registered as broadcast targets for as long as they
// live; inbound frames are decoded, routed, and answered on the same
// socket, with the request Origin header carried as the sender origin.
package server
