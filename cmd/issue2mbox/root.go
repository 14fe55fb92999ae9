// Copyright 2026 The issue2mbox Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/phikal/issue2mbox/internal/export"
	"github.com/phikal/issue2mbox/internal/forge"
	"github.com/phikal/issue2mbox/internal/mailbox"
	"github.com/phikal/issue2mbox/internal/tracehttp"

	"github.com/spf13/cobra"
)

var flags struct {
	repo        string
	token       string
	dest        string
	mailboxType string
	overwrite   bool
	trace       bool
}

var rootCmd = &cobra.Command{
	Use:   "issue2mbox",
	Short: "Export a repository's issues to per-issue mailboxes",
	Long: `issue2mbox exports a GitHub repository's issues, including their
comments and close events, into one local mailbox per issue (mbox or
maildir) for offline archival or migration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flags.trace {
			tracehttp.WrapDefaultTransport()
		}

		format, err := mailbox.ParseFormat(flags.mailboxType)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		src, err := forge.New(ctx, flags.token, flags.repo)
		if err != nil {
			return err
		}

		return export.Run(ctx, src, export.Options{
			RepoArg:   flags.repo,
			RepoName:  src.Name(),
			IDHost:    src.Owner() + "." + src.Name(),
			Dest:      flags.dest,
			Overwrite: flags.overwrite,
			Format:    format,
		})
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flags.repo, "repo", "r", "", "repository to export, owner/name or github.com URL")
	rootCmd.Flags().StringVarP(&flags.token, "token", "t", "", "access token for the issue tracker")
	rootCmd.Flags().StringVarP(&flags.dest, "dest", "d", "", "destination directory (default ~/<repo-name>)")
	rootCmd.Flags().BoolVarP(&flags.overwrite, "overwrite", "o", false, "destructively recreate existing per-issue mailboxes")
	rootCmd.Flags().StringVarP(&flags.mailboxType, "mailboxtype", "m", "mbox", "output container format, mbox or maildir")
	rootCmd.Flags().BoolVarP(&flags.trace, "trace", "T", false, "request debug tracing")
	cobra.CheckErr(rootCmd.MarkFlagRequired("repo"))
	cobra.CheckErr(rootCmd.MarkFlagRequired("token"))
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}
