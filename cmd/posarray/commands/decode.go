package commands

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// NewDecodeCommand returns a cli.Command for "posarray decode".
func NewDecodeCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "decode",
		Usage:     "Convert positional arrays into keyed JSON objects.",
		UsageText: `posarray decode [options] [file]`,
		Description: `The decode command reads positional arrays, one per line, and writes
one JSON object per array.

By default, the arrays are read from the standard input:

$ echo '["BTC", 1, "42000.5"]' | posarray decode -f symbol:0:string -f price:2:decimal
{"symbol":"BTC","price":"42000.5"}`,
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
		out := cmd.Root().Writer
		dec := cfg.NewDecoder(in)
		for i := 0; dec.More(); i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			rec := layout.New()
			if err := dec.Decode(rec); err != nil {
				if skip && isRecordError(err) {
					logger.Warn("skipping record", zap.Int("record", i), zap.Error(err))
					continue
				}
				return err
			}

			data, err := cfg.API.Marshal(rec)
			if err != nil {
				return errors.Wrapf(err, "record %d", i)
			}
			data = append(data, '\n')
			if _, err := out.Write(data); err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	}

	return &cmd
}
