package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	app := cli.NewApp()
	app.Name = "splitter-dump"
	app.Usage = "print owner, fixed fee and balances of the deployed Splitter contract"
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rpc, r",
			Usage: "network address of the Neo RPC server `ENDPOINT`",
		},
		cli.StringFlag{
			Name:  "contract, c",
			Usage: "Splitter contract script hash (LE) or address `HASH`",
		},
		cli.DurationFlag{
			Name:  "timeout, t",
			Value: 15 * time.Second,
			Usage: "dial and request timeout",
		},
		cli.IntFlag{
			Name:  "batch, b",
			Value: 100,
			Usage: "number of balances fetched per iterator request",
		},
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "enable debug logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	endpoint := c.String("rpc")
	switch {
	case endpoint == "":
		return cli.NewExitError("missing Neo RPC endpoint", 1)
	case c.String("contract") == "":
		return cli.NewExitError("missing contract hash", 1)
	}

	h, err := parseContract(c.String("contract"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	log, err := newLogger(c.Bool("debug"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	return dump(context.Background(), log, c.App.Writer, endpoint, h, c.Duration("timeout"), c.Int("batch"))
}

func dump(ctx context.Context, log *zap.Logger, w io.Writer, endpoint string, h util.Uint160, timeout time.Duration, batch int) error {
	b, err := newRemoteBlockChain(ctx, endpoint, timeout)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	log.Debug("connected to Neo RPC server",
		zap.String("endpoint", endpoint),
		zap.Uint32("block", b.currentBlock))

	r, err := b.splitterReader(h)
	if err != nil {
		return err
	}

	owner, err := r.Owner()
	if err != nil {
		return fmt.Errorf("get owner: %w", err)
	}

	fee, err := r.FixedFee()
	if err != nil {
		return fmt.Errorf("get fixed fee: %w", err)
	}

	balances, err := r.Balances(batch)
	if err != nil {
		return err
	}

	log.Debug("contract state fetched",
		zap.Stringer("contract", h),
		zap.Int("accounts", len(balances)))

	fmt.Fprintf(w, "block: %d\n", b.currentBlock)
	fmt.Fprintf(w, "owner: %s\n", address.Uint160ToString(owner))
	fmt.Fprintf(w, "fixed fee: %s\n", fee)

	for i := range balances {
		fmt.Fprintf(w, "%s %s\n", address.Uint160ToString(balances[i].Account), balances[i].Balance)
	}

	return nil
}

func parseContract(s string) (util.Uint160, error) {
	if h, err := util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x")); err == nil {
		return h, nil
	}

	h, err := address.StringToUint160(s)
	if err != nil {
		return util.Uint160{}, errors.New("contract must be a script hash or an address")
	}

	return h, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	return cfg.Build()
}
