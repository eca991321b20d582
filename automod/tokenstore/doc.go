// Automod component for persisting the external classifier's bearer token along with its expiry.
//
// Includes an interface and implementations using a local JSON file, in-process memory, and redis.
//
// A token is only returned while its expiry is in the future. Stores never refresh tokens themselves; the classifier client does that and overwrites the stored value.
package tokenstore
