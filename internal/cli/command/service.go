package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/msjade/esriagol/internal/cli/connection"
	"github.com/msjade/esriagol/internal/cli/output"
)

// serviceEntry mirrors the admin API's service definition payload.
type serviceEntry struct {
	FeatureQueryURL  string   `json:"feature_query_url"`
	VectorTileBase   string   `json:"vector_tile_base,omitempty"`
	AllowedOutFields []string `json:"allowed_out_fields"`
}

// ServiceCommand returns the service subcommand group.
func ServiceCommand() *cli.Command {
	return &cli.Command{
		Name:    "service",
		Aliases: []string{"svc"},
		Usage:   "Manage proxied services",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List registered services",
				Action: serviceList,
			},
			{
				Name:  "register",
				Usage: "Register or replace a service",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "alias",
						Aliases:  []string{"a"},
						Usage:    "Public alias for the service",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query-url",
						Usage:    "Upstream feature-layer query URL (must end in /query)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "tile-base",
						Usage: "Upstream vector tile server base URL",
					},
					&cli.StringSliceFlag{
						Name:     "field",
						Aliases:  []string{"f"},
						Usage:    "Allowed attribute field (repeatable)",
						Required: true,
					},
				},
				Action: serviceRegister,
			},
		},
	}
}

func serviceList(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := adminClient(c).Get(ctx, "/admin/v1/services")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result struct {
		Services map[string]serviceEntry `json:"services"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if c.String("output") == "json" {
		return formatter(c).Format(os.Stdout, result.Services)
	}

	aliases := make([]string, 0, len(result.Services))
	for alias := range result.Services {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	table := &output.Table{Headers: []string{"ALIAS", "QUERY URL", "TILE BASE", "FIELDS"}}
	for _, alias := range aliases {
		svc := result.Services[alias]
		tileBase := svc.VectorTileBase
		if tileBase == "" {
			tileBase = "-"
		}
		table.AddRow(alias, svc.FeatureQueryURL, tileBase, strings.Join(svc.AllowedOutFields, ","))
	}
	if err := table.Render(os.Stdout); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d services\n", len(aliases))
	return nil
}

func serviceRegister(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload := map[string]any{
		"alias":              c.String("alias"),
		"feature_query_url":  c.String("query-url"),
		"allowed_out_fields": c.StringSlice("field"),
	}
	if tileBase := c.String("tile-base"); tileBase != "" {
		payload["vector_tile_base"] = tileBase
	}

	resp, err := adminClient(c).Post(ctx, "/admin/v1/services", payload)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var created serviceEntry
	if err := connection.ParseResponse(resp, &created); err != nil {
		return err
	}

	fmt.Printf("service %q registered\n", c.String("alias"))
	return nil
}
