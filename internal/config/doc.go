// Package config defines the site list model consumed by the provisioning
// pipeline.
//
// A site list is a set of [SiteDescriptor] values plus one set of
// [SharedCredentials] applied to every site. Lists are read from CSV, JSON,
// YAML or TOML files ([LoadFile]), completed with credential defaults from
// the environment or a .env file ([ApplyCredentialDefaults]) and checked by
// [Validate], which reports every violation at once as a [ConfigError].
// [Load] runs all three steps.
package config
