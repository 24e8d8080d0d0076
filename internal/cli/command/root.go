// Package command provides CLI command definitions for esriagol-cli.
//
// It uses urfave/cli/v2 for command parsing. Every command talks to a
// running gateway's admin API; nothing here touches the registries on
// disk directly.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/msjade/esriagol/internal/cli/connection"
	"github.com/msjade/esriagol/internal/cli/output"
	"github.com/msjade/esriagol/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "esriagol-cli",
		Usage:   "Gateway administration tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ServiceCommand(),
			ClientCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Gateway server address (e.g. localhost:8080)",
			EnvVars: []string{"ESRIAGOL_SERVER"},
			Value:   "localhost:8080",
		},
		&cli.StringFlag{
			Name:    "admin-key",
			Aliases: []string{"K"},
			Usage:   "Admin key for the gateway admin API",
			EnvVars: []string{"ESRIAGOL_ADMIN_KEY"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json",
			Value:   "table",
		},
	}
}

// adminClient builds the admin API client from the global flags.
func adminClient(c *cli.Context) *connection.AdminClient {
	return connection.NewAdminClient(c.String("server"), c.String("admin-key"))
}

// formatter builds the output formatter from the global flags.
func formatter(c *cli.Context) output.Formatter {
	return output.NewFormatter(output.Format(c.String("output")))
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
