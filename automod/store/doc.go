// Database-backed storage (gorm) for comments, their parent contents, and moderation options.
//
// OptionStore implements config.Source, so moderation configuration is re-read from the database on every evaluation.
package store
