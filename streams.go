package killboard

// Redis stream names shared between the binaries.
const (
	// StreamRawKillmails carries raw killmails from the poller to the
	// normalization workers.
	StreamRawKillmails = "killboard:killmails:raw"

	// StreamKillmails carries enriched killmails to the API fan-out.
	StreamKillmails = "killboard:killmails:enriched"

	StreamMaxLength = 10000
)
