// Operator-triggered blacklist maintenance: idempotently adding IPs and emails to the configured blacklists, and optionally deleting the offending comment.
package blocklist
