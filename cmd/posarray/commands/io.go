package commands

import (
	"io"
	"os"

	"github.com/chaisql/posarray"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
)

func newFieldFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:     "field",
		Aliases:  []string{"f"},
		Usage:    "field of the record, in the form name:index[:type][:ambient]. Types: string, int, float, decimal, bool, time, any.",
		Required: true,
	}
}

func newSkipErrorsFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "skip-errors",
		Usage: "log records that cannot be converted and continue",
	}
}

// openInput returns the file named by the first argument of cmd,
// or the reader of the app if there is none.
func openInput(cmd *cli.Command) (io.Reader, func() error, error) {
	path := cmd.Args().First()
	if path == "" || path == "-" {
		return cmd.Root().Reader, func() error { return nil }, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return f, f.Close, nil
}

// isRecordError reports whether err only concerns the content of one record.
func isRecordError(err error) bool {
	var (
		ferr *posarray.FormatError
		uerr *posarray.UnsupportedTokenError
		cerr *posarray.ConversionError
	)

	return errors.As(err, &ferr) || errors.As(err, &uerr) || errors.As(err, &cerr)
}
