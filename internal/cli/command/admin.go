package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ptagate/internal/server/config"
	"github.com/yndnr/ptagate/internal/server/localserver"
)

// AdminCommand returns the admin command group, which talks to a running
// gate over its admin socket.
func AdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Control a running gate through its admin socket",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "socket",
				Usage:   "Admin socket path (default: server.admin_socket from --config)",
				EnvVars: []string{"PTAGATE_ADMIN_SOCKET"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Time limit for the exchange",
				Value: 10 * time.Second,
			},
		},
		Subcommands: []*cli.Command{
			{Name: "status", Usage: "Show keys, locations and uptime", Action: adminStatus},
			{Name: "reload", Usage: "Reload the configuration file", Action: adminAction("reload")},
			{Name: "shutdown", Usage: "Stop the gate gracefully", Action: adminAction("shutdown")},
			{Name: "ping", Usage: "Check that the gate answers", Action: adminAction("ping")},
		},
	}
}

func adminStatus(c *cli.Context) error {
	out, err := adminCall(c, "status")
	if err != nil {
		return err
	}
	var status map[string]any
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}
	return render(c, status)
}

func adminAction(cmd string) cli.ActionFunc {
	return func(c *cli.Context) error {
		out, err := adminCall(c, cmd)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(c.App.Writer, out)
		return err
	}
}

func adminCall(c *cli.Context, cmd string) (string, error) {
	path, err := adminSocket(c)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	out, err := localserver.Call(ctx, path, cmd)
	if err != nil {
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	return out, nil
}

func adminSocket(c *cli.Context) (string, error) {
	if path := c.String("socket"); path != "" {
		return path, nil
	}
	if cfgPath := ParseGlobalFlags(c).Config; cfgPath != "" {
		cfg, err := config.LoadUnverified(cfgPath, nil)
		if err != nil {
			return "", err
		}
		if cfg.Server.AdminSocket != "" {
			return cfg.Server.AdminSocket, nil
		}
	}
	return "", errors.New("no admin socket (use --socket or set server.admin_socket in --config)")
}
