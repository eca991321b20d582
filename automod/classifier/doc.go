// Client for an external text-moderation service (Baidu text censor API), which maps remote verdicts to a pass/review/block/error outcome.
//
// Bearer tokens are obtained with an OAuth2 client-credentials exchange and cached in a tokenstore.TokenStore. If the moderation call reports an invalid or expired token, the client refreshes the token once and retries exactly once; there are no other retries.
package classifier
