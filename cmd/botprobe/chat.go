package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kroy92/copilot-automation-testing/internal/service/directline"
)

var chatMessages []string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot; messages come from -m flags or stdin, one per line",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Disconnect()

		out := cmd.OutOrStdout()
		if len(chatMessages) > 0 {
			for _, text := range chatMessages {
				if err := exchange(cmd, client, out, text); err != nil {
					return err
				}
			}
			return nil
		}

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if err := exchange(cmd, client, out, text); err != nil {
				return err
			}
		}
		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().StringArrayVarP(&chatMessages, "message", "m", nil, "message to send (repeatable)")
}

func exchange(cmd *cobra.Command, client *directline.Client, out io.Writer, text string) error {
	fmt.Fprintln(out, userStyle.Render("you> ")+text)

	if err := client.Send(cmd.Context(), text); err != nil {
		return err
	}

	result, err := client.Receive(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderReply(result))
	return nil
}
