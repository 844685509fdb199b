// Package httpclient is the shared JSON-over-HTTP requester used by the peer
// service clients.
//
// Every request carries headers identifying the calling service and a
// request ID, reuses pooled connections, and is traced with an OpenTelemetry
// client span. Non-2xx responses surface as StatusError so the retry layer
// can classify them.
package httpclient
