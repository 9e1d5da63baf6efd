package main

import lru "github.com/hashicorp/golang-lru/v2"

// Redisq redelivers on slow acks; a small in-process cache keeps the
// same killmail from being fetched and enqueued twice in a row.
var killmailCache, _ = lru.New[int32, bool](4096)

func isKillmailCached(killmailID int32) bool {
	ok, _ := killmailCache.ContainsOrAdd(killmailID, true)
	return ok
}
