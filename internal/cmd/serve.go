// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dotandev/simauto/internal/rpc"
)

var (
	listenFlag   string
	caseRootFlag string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the case over JSON-RPC for remote clients",
	Long: `Open the case and serve it over JSON-RPC until interrupted. Requests are
handled one at a time. Other machines drive the case with --remote.

The endpoint has no authentication: anyone who can reach it can run script
commands and write files. It listens on 127.0.0.1 unless told otherwise.
Cases to open and save targets named by clients must lie under --case-root,
which defaults to the served case's directory.`,
	Example: `  simauto serve --case C:\cases\ieee14.pwb --listen 0.0.0.0:7420`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := listenFlag
		if addr == "" {
			addr = appConfig.RPC.Listen
		}
		if err := rpc.ValidateListenAddr(addr); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		sess, release, err := newLocalSession()
		if err != nil {
			return err
		}
		defer release()

		root := caseRootFlag
		if root == "" {
			root = appConfig.RPC.CaseRoot
		}
		if root == "" {
			root = sess.Paths().Folder
		}

		pterm.Info.Printfln("Serving %s on http://%s%s (session %s)", sess.CasePath(), addr, rpc.DefaultPath, sess.ID())
		pterm.Info.Printfln("Remote clients are confined to %s", root)
		if err := rpc.Serve(cmd.Context(), addr, rpc.NewService(sess, rpc.WithCaseRoot(root))); err != nil {
			return fmt.Errorf("Error: %w", err)
		}
		pterm.Success.Println("Server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenFlag, "listen", "", "Address to listen on (default from config, 127.0.0.1:7420)")
	serveCmd.Flags().StringVar(&caseRootFlag, "case-root", "", "Directory remote clients may open and save cases under (default: the case's directory)")
	rootCmd.AddCommand(serveCmd)
}
