package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ptagate/internal/server/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"cfg"},
		Usage:   "Gate configuration",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Load and verify a configuration file",
				ArgsUsage: "[FILE]",
				Action:    configCheck,
			},
			{
				Name:   "default",
				Usage:  "Print the built-in defaults",
				Action: configDefault,
			},
		},
	}
}

// configCheck verifies the whole file, including the listener and upstream
// sections, and prints it with secrets masked.
func configCheck(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = ParseGlobalFlags(c).Config
	}
	if path == "" {
		return fmt.Errorf("no configuration file given (use --config or an argument)")
	}

	cfg, err := config.Load(path, nil)
	if err != nil {
		return err
	}
	return render(c, config.Sanitize(cfg))
}

func configDefault(c *cli.Context) error {
	return render(c, config.Default())
}
