// Package config handles configuration loading for the Ember client core.
//
// Configuration is a YAML file selecting the backend endpoint, the durable
// storage driver (sqlite, redis, or memory), the push platform, and logging.
// ${VAR_NAME} patterns are expanded from the environment before parsing, and
// duration fields accept Go duration strings ("10s", "1m30s").
package config
