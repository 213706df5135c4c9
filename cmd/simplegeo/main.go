package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mohammed-shakir/simplegeo-client/internal/core/config"
	"github.com/mohammed-shakir/simplegeo-client/internal/core/observability"
	"github.com/mohammed-shakir/simplegeo-client/internal/logger"
	"github.com/mohammed-shakir/simplegeo-client/pkg/simplegeo"
)

var Version = "dev"

const usage = `usage: simplegeo [flags] <command> [args]

commands:
  record   <layer> <id>
  records  <layer> <id>[,<id>...]
  delete   <layer> <id>
  history  <layer> <id>
  nearby   <layer> <geohash | lat lon>
  address  <lat> <lon>
  density  <lat> <lon> <day> [hour]
  layer    <layer>
  contains <lat> <lon>
  overlaps <south> <west> <north> <east>
  boundary <id>
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("simplegeo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(stderr, usage); fs.PrintDefaults() }
	debug := fs.Bool("debug", false, "log every request")
	realm := fs.String("realm", "", "override SIMPLEGEO_REALM")
	var opts optionFlags
	fs.Var(&opts, "opt", "query option key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.FromEnv()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	if *realm != "" {
		cfg.Realm = strings.TrimSpace(*realm)
	}
	if *debug {
		cfg.Debug = true
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "simplegeo-cli",
	}, stderr)
	appLog := logger.NewSlog(&zl)
	observability.ExposeBuildInfo(Version)

	if !cfg.HasCredentials() {
		appLog.Error("missing credentials", "hint", "set SIMPLEGEO_TOKEN and SIMPLEGEO_SECRET")
		return 1
	}

	client := simplegeo.New(
		simplegeo.WithRealm(cfg.Realm),
		simplegeo.WithLogger(appLog),
		simplegeo.WithTimeout(cfg.Timeout),
		simplegeo.WithUserAgent(cfg.UserAgent),
	)
	client.SetDebug(cfg.Debug)
	client.SetCredentials(cfg.Token, cfg.Secret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithRequestID(ctx, "")

	out, err := dispatch(ctx, client, fs.Args(), simplegeo.Options(opts))
	if errors.Is(err, errUsage) {
		fs.Usage()
		return 2
	}
	if err != nil {
		appLog.ErrorContext(ctx, "request failed", "err", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		appLog.Error("encode output", "err", err)
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func dispatch(ctx context.Context, c *simplegeo.Client, args []string, opts simplegeo.Options) (any, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	cmd, rest := args[0], args[1:]
	want := func(n ...int) error {
		for _, k := range n {
			if len(rest) == k {
				return nil
			}
		}
		return errUsage
	}

	switch cmd {
	case "record":
		if err := want(2); err != nil {
			return nil, err
		}
		return c.GetRecord(ctx, rest[0], rest[1])
	case "records":
		if err := want(2); err != nil {
			return nil, err
		}
		return c.GetRecords(ctx, rest[0], simplegeo.Many(strings.Split(rest[1], ",")...))
	case "delete":
		if err := want(2); err != nil {
			return nil, err
		}
		return c.DeleteRecord(ctx, rest[0], rest[1])
	case "history":
		if err := want(2); err != nil {
			return nil, err
		}
		return c.GetHistory(ctx, rest[0], rest[1], opts)
	case "nearby":
		if err := want(2, 3); err != nil {
			return nil, err
		}
		if len(rest) == 2 {
			return c.GetNearby(ctx, rest[0], rest[1], opts)
		}
		f, err := floats(rest[1:])
		if err != nil {
			return nil, err
		}
		return c.GetNearbyLatLon(ctx, rest[0], f[0], f[1], opts)
	case "address", "contains":
		if err := want(2); err != nil {
			return nil, err
		}
		f, err := floats(rest)
		if err != nil {
			return nil, err
		}
		if cmd == "address" {
			return c.GetNearbyAddress(ctx, f[0], f[1])
		}
		return c.GetContains(ctx, f[0], f[1])
	case "density":
		if err := want(3, 4); err != nil {
			return nil, err
		}
		f, err := floats(rest[:2])
		if err != nil {
			return nil, err
		}
		hour := simplegeo.NoHour
		if len(rest) == 4 {
			h, err := strconv.Atoi(rest[3])
			if err != nil {
				return nil, fmt.Errorf("parse hour %q: %w", rest[3], err)
			}
			hour = simplegeo.AtHour(h)
		}
		return c.GetDensity(ctx, f[0], f[1], rest[2], hour)
	case "layer":
		if err := want(1); err != nil {
			return nil, err
		}
		return c.GetLayerInformation(ctx, rest[0])
	case "overlaps":
		if err := want(4); err != nil {
			return nil, err
		}
		f, err := floats(rest)
		if err != nil {
			return nil, err
		}
		return c.GetOverlaps(ctx, f[0], f[1], f[2], f[3], opts)
	case "boundary":
		if err := want(1); err != nil {
			return nil, err
		}
		return c.GetBoundary(ctx, rest[0])
	default:
		return nil, errUsage
	}
}

func floats(ss []string) ([]float64, error) {
	out := make([]float64, len(ss))
	for i, s := range ss {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parse coordinate %q: %w", s, err)
		}
		out[i] = f
	}
	return out, nil
}

type optionFlags map[string][]string

func (o *optionFlags) String() string { return fmt.Sprint(map[string][]string(*o)) }

func (o *optionFlags) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok || k == "" {
		return fmt.Errorf("option %q must be key=value", v)
	}
	if *o == nil {
		*o = optionFlags{}
	}
	(*o)[k] = append((*o)[k], val)
	return nil
}
