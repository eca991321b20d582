// Comment moderation rules engine.
//
// This package (`github.com/commentguard/commentguard/automod`) contains a "rules engine" which decides whether a submitted blog comment is allowed, held for manual review, or denied. An ordered set of rules runs over each comment: blacklists, sensitive words, spam and garbled-text heuristics, script (language) detection, and an optional external text-moderation service. The first deny wins; holds accumulate. Denied and held comments are recorded in a per-day audit log.
//
// The engine has two entry points: a pre-save gate which runs before a comment is persisted, and a post-save re-check which deletes or holds an already stored comment.
//
// See `cmd/commentguard` for a service and CLI built on this package.
package automod
