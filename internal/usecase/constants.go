package usecase

import "time"

const (
	// Page size used when draining an account's full history.
	defaultListPageSize = 200

	// TTL for cached latest balances. Short on purpose: the cache absorbs
	// read bursts, the store stays the source of truth.
	balanceCacheTTL = 15 * time.Second

	balanceCachePrefix = "balance:"
)
