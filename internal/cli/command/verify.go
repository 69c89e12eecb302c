package command

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ptagate/internal/core/domain"
	"github.com/yndnr/ptagate/internal/core/pta"
	"github.com/yndnr/ptagate/internal/server/config"
	"github.com/yndnr/ptagate/internal/server/httpserver"
)

// VerifyResult is the outcome of an offline validation.
type VerifyResult struct {
	Outcome   string `json:"outcome" yaml:"outcome"`
	Code      string `json:"code,omitempty" yaml:"code,omitempty"`
	Source    string `json:"source" yaml:"source"`
	Candidate int    `json:"candidate" yaml:"candidate"`
	Slot      string `json:"slot" yaml:"slot"`
	Deadline  string `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// VerifyCommand returns the verify command.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check a token against the configured keys without a running gate",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "url",
				Usage:    "Request path and query, e.g. /videos/a.mp4?pta=...",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Token to send as the pta query argument",
			},
			&cli.StringSliceFlag{
				Name:  "cookie",
				Usage: "Cookie header value (repeatable)",
			},
			&cli.StringFlag{
				Name:  "method",
				Usage: "Token source: qs, cookie or both (default: from the location table)",
			},
			&cli.Int64Flag{
				Name:  "at",
				Usage: "Validate as of this Unix time instead of now",
			},
		},
		Action: verify,
	}
}

func verify(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	req, err := buildRequest(c.String("url"), c.String("token"), c.StringSlice("cookie"))
	if err != nil {
		return err
	}

	methods, err := resolveMethods(c.String("method"), cfg.PTA.Locations, req.Path)
	if err != nil {
		return err
	}

	var opts []pta.Option
	if c.IsSet("at") {
		at := time.Unix(c.Int64("at"), 0)
		opts = append(opts, pta.WithClock(func() time.Time { return at }))
	}
	v, err := cfg.PTA.NewValidator(opts...)
	if err != nil {
		return err
	}

	decision, verr := v.Validate(req, methods)
	if err := render(c, newVerifyResult(decision, verr)); err != nil {
		return err
	}
	if verr != nil {
		return ErrNotAuthorized
	}
	return nil
}

func buildRequest(rawURL, token string, cookies []string) (pta.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return pta.Request{}, fmt.Errorf("--url: %w", err)
	}

	req := pta.Request{
		Path:     u.Path,
		RawQuery: u.RawQuery,
		Cookies:  cookies,
	}
	if req.Path == "" {
		req.Path = "/"
	}
	if token != "" {
		if _, ok := pta.QueryToken(req.RawQuery); ok {
			return pta.Request{}, errors.New("--token conflicts with a pta argument already in --url")
		}
		if req.RawQuery != "" {
			req.RawQuery += "&"
		}
		req.RawQuery += pta.ParamName + "=" + token
	}
	return req, nil
}

// resolveMethods honors --method, falling back to the location that would
// govern path in the gate.
func resolveMethods(flag string, locs []config.LocationConfig, path string) (pta.AuthMethod, error) {
	if flag != "" {
		return pta.ParseAuthMethod(flag)
	}
	table, err := httpserver.NewLocations(locs)
	if err != nil {
		return 0, err
	}
	loc, ok := table.Lookup(path)
	if !ok || !loc.Enabled {
		return pta.QueryString, nil
	}
	return loc.Methods, nil
}

func newVerifyResult(d pta.Decision, err error) VerifyResult {
	r := VerifyResult{
		Outcome:   pta.OutcomeOf(err),
		Source:    d.Method.String(),
		Candidate: d.Candidate,
		Slot:      d.KeySlot.String(),
	}
	if d.Deadline != 0 {
		r.Deadline = time.Unix(d.Deadline, 0).UTC().Format(time.RFC3339)
	}
	if err != nil {
		r.Code = domain.GetErrorCode(err)
		if cause := errors.Unwrap(err); cause != nil {
			r.Reason = cause.Error()
		} else {
			r.Reason = err.Error()
		}
	}
	return r
}
