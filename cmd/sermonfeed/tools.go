package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sermonfeed/internal/auth"
)

var resolveChannelCmd = &cobra.Command{
	Use:     "resolve-channel <@handle|url>",
	Short:   "Print the channel ID behind a YouTube handle",
	Example: "  sermonfeed resolve-channel @gracechurch",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := newFetcher(state.cfg, state.logger).ResolveChannelID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var hashTokenCmd = &cobra.Command{
	Use:   "hash-token [token]",
	Short: "Print a bcrypt hash for SERMONFEED_ADMIN_TOKEN_HASH",
	Long:  "Hash an admin refresh token. The token is read from stdin when not given as an argument.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading token: %w", err)
			}
			token = strings.TrimSpace(line)
		}

		hash, err := auth.HashToken(token)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}
