// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sigil-dev/rolodex/internal/store"
)

func newSearchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [prefix]",
		Short: "Search contacts by name prefix",
		Long:  "Query a running server for contacts whose names start with prefix. With no prefix every contact is listed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, v, args)
		},
	}

	cmd.Flags().String("address", "", "server address (default: networking.listen)")

	return cmd
}

func runSearch(cmd *cobra.Command, v *viper.Viper, args []string) error {
	var prefix string
	if len(args) > 0 {
		prefix = args[0]
	}

	var results map[string]store.Contact
	if err := newAPIClient(serverAddress(cmd, v)).getJSON("/contacts/search?query="+url.QueryEscape(prefix), &results); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		_, err := fmt.Fprintf(out, "No contacts match %q\n", prefix)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range slices.Sorted(maps.Keys(results)) {
		c := results[name]
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", name, c.Phone, c.Email)
	}
	return tw.Flush()
}
