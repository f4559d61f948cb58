// Package config provides configuration loading and validation for the Lingopal
// job client. It supports YAML configuration files as well as the environment
// variable contract used by the example scripts, including .env loading.
package config
