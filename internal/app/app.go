package app

import (
	"fmt"
	"io"

	"clashctl/internal/clash"
	"clashctl/internal/config"
)

// App represents the application context for one invocation: the
// location and contents of the persisted config store.
type App struct {
	ConfigPath string
	Store      config.Store
}

// New loads the config store. An unreadable store degrades to an empty
// one with a warning on warn; commands still run against
// flag/env/default values.
func New(configPath string, warn io.Writer) (*App, error) {
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	store, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(warn, "warning: %v (continuing with empty config)\n", err)
		store = config.Store{}
	}

	return &App{
		ConfigPath: configPath,
		Store:      store,
	}, nil
}

// Client builds a control-API client from the resolved effective
// config. Flag values take precedence over the store, then environment,
// then built-in defaults.
func (a *App) Client(flagHost, flagSecret string) *clash.Client {
	eff := config.Resolve(flagHost, flagSecret, a.Store)
	return clash.NewClient(clash.Config{Host: eff.Host, Secret: eff.Secret})
}
