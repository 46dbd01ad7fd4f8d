package commands

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

// NewVersionCommand returns a cli.Command for "posarray version".
func NewVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Shows posarray and posarray CLI version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			info, ok := debug.ReadBuildInfo()
			if !ok {
				_, err := fmt.Fprintln(w, `version not available in GOPATH mode; use "go install" with Go modules enabled`)
				return err
			}

			cliVersion := info.Main.Version
			var libVersion string
			for _, mod := range info.Deps {
				if mod.Path != "github.com/chaisql/posarray" {
					continue
				}
				// if a replace directive is set, posarray is in development mode
				if mod.Replace != nil {
					libVersion = "(devel)"
					break
				}
				libVersion = mod.Version
				break
			}

			_, err := fmt.Fprintf(w, "posarray %v\nposarray CLI %v\n", libVersion, cliVersion)
			return err
		},
	}
}
