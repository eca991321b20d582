// Append-only audit log of denied and held comments, partitioned in to one JSON-lines file per UTC day.
//
// Also provides the operator views over those files: listing, paged viewing (newest first), and deletion.
package auditlog
