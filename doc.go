// Package quill is a client SDK for the Quill workspace API, a
// property-rich document database service.
//
// The SDK translates typed filter expressions into the nested boolean
// filter grammar of the remote API, executes queries as lazy cursor-based
// sequences, retries transient failures with exponential backoff while
// tracking the server's rate limit budget, and caches resolved objects in a
// manually-invalidated, per-client cache.
//
//	client, err := quill.New(
//		quill.WithToken(os.Getenv("QUILL_TOKEN")),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	q, err := client.Database(dbID).Query(ctx)
//	if err != nil { ... }
//	tasks, err := q.
//		Filter("Status", "Done").
//		Filter("Priority__gte", 5).
//		Sort("Due", quill.Ascending).
//		Limit(50).
//		Collect(ctx)
//
// Cached entries never expire on their own; invalidation is the caller's
// responsibility.
package quill
