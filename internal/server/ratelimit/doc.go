// Package ratelimit admits or rejects requests per client key using a
// sliding window of request timestamps.
//
// The key is whatever the caller supplies; the HTTP layer uses the client's
// network address, which is spoofable and shared behind NAT. Limits are a
// courtesy against casual abuse, not a security boundary.
//
// Limiter keeps its windows in process memory: they do not survive a restart
// and are not shared between instances. RedisLimiter implements the same
// contract on a shared Redis for multi-instance deployments.
package ratelimit
