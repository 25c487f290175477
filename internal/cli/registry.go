package cli

import (
	"github.com/agentx-labs/copybridge/internal/bridge"
	"github.com/agentx-labs/copybridge/internal/config"
	"github.com/agentx-labs/copybridge/internal/metrics"
)

// newRegistry builds the command table the frontend may invoke.
func newRegistry(s config.Settings, rec metrics.Recorder) (*bridge.Registry, error) {
	scope, err := bridge.NewScope(s.ScopeAllow)
	if err != nil {
		return nil, err
	}

	reg := bridge.NewRegistry()
	if err := reg.Register(bridge.NewCopyDirectoryCommand(bridge.CopyDirectoryConfig{
		BufferSize: s.BufferSize,
		Scope:      scope,
		Recorder:   rec,
	})); err != nil {
		return nil, err
	}
	return reg, nil
}
