// Package commands implements the cloudconduit CLI commands.
package commands

import (
	"sync"

	"github.com/systmms/cloudconduit/internal/identity"
	"github.com/systmms/cloudconduit/internal/keystore"
	"github.com/systmms/cloudconduit/internal/logging"
	"github.com/systmms/cloudconduit/pkg/conduit"
)

// App carries the shared CLI state wired by the root command's
// persistent flags.
type App struct {
	Logger         *logging.Logger
	DefaultsPath   string
	NonInteractive bool
	DomainSuffix   string

	// Keyring overrides the secure-store backend. Tests inject an
	// in-memory ring here; nil means the platform keyring.
	Keyring keystore.Keyring

	once sync.Once
	cc   *conduit.Conduit
}

// Conduit lazily builds the shared Conduit so flag parsing has happened
// by the time options are read.
func (a *App) Conduit() *conduit.Conduit {
	a.once.Do(func() {
		opts := []conduit.Option{
			conduit.WithLogger(a.Logger),
			conduit.WithIdentityRule(identity.Rule{DomainSuffix: a.DomainSuffix}),
		}
		if a.DefaultsPath != "" {
			opts = append(opts, conduit.WithDefaultsPath(a.DefaultsPath))
		}
		if a.Keyring != nil {
			opts = append(opts, conduit.WithKeyring(a.Keyring))
		}
		a.cc = conduit.New(opts...)
	})
	return a.cc
}
