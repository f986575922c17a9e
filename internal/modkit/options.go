package modkit

import (
	"modhost/internal/modkit/di"
	"modhost/internal/platform/config"
	"modhost/internal/platform/logger"
)

// Option mutates compose configuration
type Option func(*composeCfg)

type composeCfg struct {
	log     *logger.Logger
	cfg     config.Conf
	globals []di.Provider
}

// WithLogger sets the logger used by the composition root and the container
func WithLogger(l *logger.Logger) Option {
	return func(c *composeCfg) { c.log = l }
}

// WithConfig sets the config published under TokenConfig
func WithConfig(cfg config.Conf) Option {
	return func(c *composeCfg) { c.cfg = cfg }
}

// WithGlobals registers providers visible to every module
// Globals may only depend on other globals
func WithGlobals(ps ...di.Provider) Option {
	return func(c *composeCfg) { c.globals = append(c.globals, ps...) }
}
