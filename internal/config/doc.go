// Package config provides the configuration of a thronescan run: defaults,
// validation, date normalization and the optional .thronescan YAML file
// carrying alias additions and default flag values.
package config
