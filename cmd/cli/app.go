package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/redbco/redb-connect/cmd/cli/internal/output"
	"github.com/redbco/redb-connect/cmd/cli/internal/profile"
	"github.com/redbco/redb-connect/pkg/factory"
	"github.com/redbco/redb-connect/pkg/logger"
	"github.com/redbco/redb-connect/pkg/secrets"
)

// app carries the global flags and the collaborators commands share.
type app struct {
	configFile string
	url        string
	typeName   string
	format     string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    *logger.Logger
	store  secrets.Store
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		store: secrets.Lazy(func() secrets.Store {
			return secrets.NewStore(secrets.DefaultPath(), secrets.MasterPasswordFromEnv())
		}),
	}
}

func (a *app) logger() *logger.Logger {
	if a.log == nil {
		a.log = logger.New("redb-connect", Version)
	}
	return a.log
}

func (a *app) outputFormat() (output.Format, error) {
	return output.ParseFormat(a.format)
}

// factory loads the profile, resolves secret references and builds the
// connector factory. The caller closes it. A --url address supplies the type
// and base configuration; profile entries and --type take precedence.
func (a *app) factory() (*factory.Factory, error) {
	p, err := profile.Load(a.configFile)
	if err != nil {
		return nil, err
	}
	if a.url != "" {
		id, base, err := factory.ConfigFromURI(a.url)
		if err != nil {
			return nil, err
		}
		for k, v := range p.Config {
			base[k] = v
		}
		p.Type = string(id)
		p.Config = base
	}
	if a.typeName != "" {
		p.Type = a.typeName
	}
	if p.Type == "" {
		return nil, errors.New("connector type is required, set --type or type in the profile")
	}

	cfg, err := secrets.NewResolver(a.store).Config(p.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secrets: %w", err)
	}

	f := factory.New(p.Type, cfg, p.Debug, factory.WithLogger(a.logger()))
	if diag := f.Diagnostic(); diag != "" {
		return nil, errors.New(diag)
	}
	return f, nil
}
