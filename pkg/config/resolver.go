package config

import (
	"github.com/tauraamui/camarchive/internal/config"
	"github.com/tauraamui/camarchive/pkg/configdef"
)

type Resolver interface {
	Load() (configdef.Values, error)
}

func DefaultResolver() Resolver {
	return defaultResolver{r: config.DefaultResolver()}
}

type defaultResolver struct {
	r configdef.Resolver
}

func (d defaultResolver) Load() (configdef.Values, error) {
	return d.r.Resolve()
}
