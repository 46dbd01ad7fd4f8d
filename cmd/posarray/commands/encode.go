package commands

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// NewEncodeCommand returns a cli.Command for "posarray encode".
func NewEncodeCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "encode",
		Usage:     "Convert keyed JSON objects into positional arrays.",
		UsageText: `posarray encode [options] [file]`,
		Description: `The encode command reads JSON objects and writes one positional
array per object, one per line. Missing positions are written as null:

$ echo '{"symbol":"BTC","price":42000.5}' | posarray encode -f symbol:0:string -f price:2:float
["BTC",null,42000.5]`,
		Flags: []cli.Flag{
			newFieldFlag(),
			newSkipErrorsFlag(),
		},
	}

	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		layout, err := ParseLayout(cmd.StringSlice("field"))
		if err != nil {
			return err
		}

		cfg, logger, err := newConfig(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		in, closeFn, err := openInput(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		skip := cmd.Bool("skip-errors")
		dec := cfg.API.NewDecoder(in)
		enc := cfg.NewEncoder(cmd.Root().Writer)
		for i := 0; dec.More(); i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			rec := layout.New()
			if err := dec.Decode(rec); err != nil {
				if skip {
					logger.Warn("skipping object", zap.Int("object", i), zap.Error(err))
					continue
				}
				return errors.Wrapf(err, "object %d", i)
			}

			if err := enc.Encode(rec); err != nil {
				if skip && isRecordError(err) {
					logger.Warn("skipping object", zap.Int("object", i), zap.Error(err))
					continue
				}
				return errors.Wrapf(err, "object %d", i)
			}
		}

		return nil
	}

	return &cmd
}
