package command

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/msjade/esriagol/internal/cli/connection"
	"github.com/msjade/esriagol/internal/cli/output"
)

// clientEntry mirrors the admin API's client listing payload.
type clientEntry struct {
	Key       string            `json:"key"`
	Name      string            `json:"name"`
	Services  []string          `json:"services,omitempty"`
	Disabled  bool              `json:"disabled"`
	WhereLock map[string]string `json:"where_lock,omitempty"`
}

// ClientCommand returns the client subcommand group.
func ClientCommand() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "Manage client keys",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List client keys (masked)",
				Action: clientList,
			},
			{
				Name:  "create",
				Usage: "Create a client key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Client name",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "service",
						Usage: "Allowed service alias (repeatable; none means all)",
					},
					&cli.StringSliceFlag{
						Name:  "lock",
						Usage: "Row lock as alias=clause (repeatable)",
					},
				},
				Action: clientCreate,
			},
			{
				Name:      "disable",
				Usage:     "Disable a client key",
				ArgsUsage: "CLIENT_KEY",
				Action:    clientSetStatus(true),
			},
			{
				Name:      "enable",
				Usage:     "Enable a client key",
				ArgsUsage: "CLIENT_KEY",
				Action:    clientSetStatus(false),
			},
		},
	}
}

func clientList(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := adminClient(c).Get(ctx, "/admin/v1/clients")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Clients []clientEntry `json:"clients"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if c.String("output") == "json" {
		return formatter(c).Format(os.Stdout, result.Clients)
	}

	table := &output.Table{Headers: []string{"KEY", "NAME", "SERVICES", "STATUS", "LOCKS"}}
	for _, cl := range result.Clients {
		services := "all"
		if len(cl.Services) > 0 {
			services = strings.Join(cl.Services, ",")
		}
		status := "active"
		if cl.Disabled {
			status = "disabled"
		}
		locks := "-"
		if len(cl.WhereLock) > 0 {
			locks = fmt.Sprintf("%d", len(cl.WhereLock))
		}
		table.AddRow(cl.Key, cl.Name, services, status, locks)
	}
	if err := table.Render(os.Stdout); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d clients\n", len(result.Clients))
	return nil
}

func clientCreate(c *cli.Context) error {
	locks, err := parseLocks(c.StringSlice("lock"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload := map[string]any{
		"name": c.String("name"),
	}
	if services := c.StringSlice("service"); len(services) > 0 {
		payload["services"] = services
	}
	if len(locks) > 0 {
		payload["where_lock"] = locks
	}

	resp, err := adminClient(c).Post(ctx, "/admin/v1/clients", payload)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var created clientEntry
	if err := connection.ParseResponse(resp, &created); err != nil {
		return err
	}

	// The full key is shown exactly once; it cannot be retrieved later.
	fmt.Printf("client %q created\n\n  key: %s\n\nstore this key now, it will not be shown again\n",
		created.Name, created.Key)
	return nil
}

func clientSetStatus(disabled bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		key := c.Args().First()
		if key == "" {
			return fmt.Errorf("client key required")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		resp, err := adminClient(c).Post(ctx, "/admin/v1/clients/"+key+"/status",
			map[string]bool{"disabled": disabled})
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		var result struct {
			Status string `json:"status"`
		}
		if err := connection.ParseResponse(resp, &result); err != nil {
			return err
		}

		fmt.Printf("client %s\n", result.Status)
		return nil
	}
}

// parseLocks converts repeated alias=clause flags into a lock map.
func parseLocks(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	locks := make(map[string]string, len(raw))
	for _, entry := range raw {
		alias, clause, ok := strings.Cut(entry, "=")
		if !ok || alias == "" || clause == "" {
			return nil, fmt.Errorf("invalid lock %q, want alias=clause", entry)
		}
		locks[alias] = clause
	}
	return locks, nil
}
