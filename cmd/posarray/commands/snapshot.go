package commands

import (
	"context"
	"io"
	"strings"

	"github.com/chaisql/posarray/snapshot"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
)

func newDBFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Usage:    "path of the snapshot store",
		Required: true,
	}
}

// NewSnapshotCommand returns a cli.Command for "posarray snapshot".
func NewSnapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Store and read the last value of records.",
		Commands: []*cli.Command{
			newSnapshotPutCommand(),
			newSnapshotGetCommand(),
		},
	}
}

func newSnapshotPutCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "put",
		Usage:     "Store a positional array under a key.",
		UsageText: `posarray snapshot put --db path -f name:index[:type] key [array]`,
		Description: `The array is read from the standard input if it is not given as argument.
It is decoded with the given fields and stored in its positional form:

$ posarray snapshot put --db snap -f symbol:0:string -f price:2:decimal BTC '["BTC", 1, "42000.5"]'`,
		Flags: []cli.Flag{
			newDBFlag(),
			newFieldFlag(),
		},
	}

	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		key := cmd.Args().First()
		if key == "" {
			return errors.New(cmd.UsageText)
		}

		layout, err := ParseLayout(cmd.StringSlice("field"))
		if err != nil {
			return err
		}

		var data []byte
		if cmd.Args().Len() > 1 {
			data = []byte(cmd.Args().Get(1))
		} else {
			data, err = io.ReadAll(cmd.Root().Reader)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		cfg, logger, err := newConfig(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		rec := layout.New()
		if err := cfg.Unmarshal(data, rec); err != nil {
			return err
		}

		s, err := snapshot.Open(cmd.String("db"), &snapshot.Options{Config: cfg})
		if err != nil {
			return err
		}
		defer s.Close()

		return s.Put(key, rec)
	}

	return &cmd
}

func newSnapshotGetCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "get",
		Usage:     "Print the record stored under a key.",
		UsageText: `posarray snapshot get --db path [-f name:index[:type]] key`,
		Description: `Without fields, the positional array is printed as stored.
With fields, it is printed as a keyed JSON object.`,
		Flags: []cli.Flag{
			newDBFlag(),
			&cli.StringSliceFlag{
				Name:    "field",
				Aliases: []string{"f"},
				Usage:   "field of the record, in the form name:index[:type][:ambient]",
			},
		},
	}

	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		key := cmd.Args().First()
		if key == "" {
			return errors.New(cmd.UsageText)
		}

		cfg, logger, err := newConfig(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		s, err := snapshot.Open(cmd.String("db"), &snapshot.Options{Config: cfg})
		if err != nil {
			return err
		}
		defer s.Close()

		var data []byte
		if defs := cmd.StringSlice("field"); len(defs) > 0 {
			layout, err := ParseLayout(defs)
			if err != nil {
				return err
			}

			rec := layout.New()
			if err := s.Get(key, rec); err != nil {
				return err
			}

			data, err = cfg.API.Marshal(rec)
			if err != nil {
				return errors.WithStack(err)
			}
		} else {
			data, err = s.GetRaw(key)
			if err != nil {
				return err
			}
		}

		_, err = io.WriteString(cmd.Root().Writer, strings.TrimSpace(string(data))+"\n")
		return err
	}

	return &cmd
}
