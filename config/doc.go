// Package config provides configuration loading and validation for the
// audio2txt application.
//
// Configuration comes from a YAML file, a .env file, and environment
// variables, in increasing order of precedence. Environment overrides
// use the AUDIO2TXT_ prefix with underscore-separated paths
// (e.g. AUDIO2TXT_WHISPER_URL, AUDIO2TXT_PIPELINE_MAX_CONCURRENT).
//
//	cfg, err := config.Load(config.WithConfigFile("config.yml"))
package config
