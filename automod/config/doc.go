// Moderation configuration: a flat, typed snapshot decoded from named string options, and the Source interface through which the engine reloads it for every evaluation.
package config
