// Package config exposes the configuration file lifecycle to commands.
package config

import (
	"github.com/tauraamui/camarchive/internal/config"
	"github.com/tauraamui/camarchive/pkg/configdef"
)

type CreateResolver interface {
	configdef.CreateResolver
}

func DefaultCreateResolver() CreateResolver {
	return config.DefaultCreateResolver()
}

type Creator interface {
	configdef.Creator
}

func DefaultCreator() Creator {
	return config.DefaultCreator()
}

type Destroyer interface {
	configdef.Destroyer
}

func DefaultDestroyer() Destroyer {
	return config.DefaultDestroyer()
}

func Defaults() configdef.Values {
	return config.Defaults()
}
