// Package config defines the settings shared by the greenhouse binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Deployment secrets (database DSN, Redis password, Kafka brokers) may be
// supplied through the environment or a .env file next to the settings file;
// they override the YAML values.
package config
