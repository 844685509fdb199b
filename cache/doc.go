// Package cache implements the cache-aside layer over Redis.
//
// The Store never surfaces backend failures: a broken cache degrades reads
// from "fast, cached" to "slow, network-backed", it never changes caller
// control flow. Writes are best-effort.
package cache
