// Package command defines the pta-cli commands.
package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ptagate/internal/cli/output"
	"github.com/yndnr/ptagate/internal/infra/buildinfo"
	"github.com/yndnr/ptagate/internal/server/config"
)

// ErrNotAuthorized is returned by verify when the token is rejected. main
// maps it to exit status 2.
var ErrNotAuthorized = errors.New("request not authorized")

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "pta-cli",
		Usage:   "PTA token gate toolkit",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			KeygenCommand(),
			ConfigCommand(),
			VerifyCommand(),
			AdminCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Gate configuration file",
			EnvVars: []string{"PTAGATE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config string
	Output string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config: c.String("config"),
		Output: c.String("output"),
	}
}

// render writes data to the app writer in the selected format.
func render(c *cli.Context, data any) error {
	format, err := output.ParseFormat(ParseGlobalFlags(c).Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, data)
}

// loadConfig loads the file named by --config without requiring the
// listener or upstream sections to be usable.
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	path := ParseGlobalFlags(c).Config
	if path == "" {
		return nil, errors.New("--config is required")
	}
	cfg, err := config.LoadUnverified(path, nil)
	if err != nil {
		return nil, err
	}
	if err := config.VerifyPTA(&cfg.PTA); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
