package commands

import (
	"github.com/bytedance/sonic"
	"github.com/chaisql/posarray"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// NewApp creates the posarray CLI app.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:                  "posarray",
		Usage:                 "Translate positional JSON arrays to and from keyed objects",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log debug messages to STDERR",
			},
		},
		Commands: []*cli.Command{
			NewDecodeCommand(),
			NewEncodeCommand(),
			NewSnapshotCommand(),
			NewVersionCommand(),
		},
	}
}

// api is the general purpose JSON API of the CLI. Numbers are kept as
// json.Number so that untyped fields are copied verbatim.
var api = sonic.Config{
	EscapeHTML:       true,
	SortMapKeys:      true,
	CompactMarshaler: true,
	CopyString:       true,
	ValidateString:   true,
	UseNumber:        true,
}.Froze()

// newConfig builds the codec configuration of a command.
// The returned logger must be synced by the caller.
func newConfig(cmd *cli.Command) (*posarray.Config, *zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.DisableStacktrace = true
	if cmd.Root().Bool("verbose") {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, nil, err
	}

	cfg := posarray.NewConfig(
		posarray.WithAPI(api),
		posarray.WithLogger(logger),
	)
	return cfg, logger, nil
}
