// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	sigilerr "github.com/sigil-dev/rolodex/pkg/errors"
)

func newStatusCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		Long:  "Query a running server's status endpoint and print its contact, index, relationship and call counts.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, v)
		},
	}

	cmd.Flags().String("address", "", "server address (default: networking.listen)")

	return cmd
}

// serverAddress resolves --address, falling back to the configured listener.
func serverAddress(cmd *cobra.Command, v *viper.Viper) string {
	if addr, _ := cmd.Flags().GetString("address"); addr != "" {
		return addr
	}
	return v.GetString("networking.listen")
}

func runStatus(cmd *cobra.Command, v *viper.Viper) error {
	addr := serverAddress(cmd, v)
	out := cmd.OutOrStdout()

	var body struct {
		Status        string `json:"status"`
		Contacts      int    `json:"contacts"`
		IndexedNames  int    `json:"indexed_names"`
		Relationships int    `json:"relationships"`
		Calls         int    `json:"calls"`
	}
	if err := newAPIClient(addr).getJSON("/status", &body); err != nil {
		if sigilerr.HasCode(err, sigilerr.CodeCLIServerNotRunning) {
			_, _ = fmt.Fprintf(out, "rolodex at %s is not running (connection refused)\n", addr)
			return nil
		}
		_, _ = fmt.Fprintf(out, "rolodex at %s: %s\n", addr, err)
		return nil
	}

	_, err := fmt.Fprintf(out, "rolodex at %s: %s\n  contacts:      %d\n  indexed names: %d\n  relationships: %d\n  calls:         %d\n",
		addr, body.Status, body.Contacts, body.IndexedNames, body.Relationships, body.Calls)
	return err
}
