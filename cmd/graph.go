package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/codequiz/internal/session"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the conversation graph as a Mermaid diagram",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), session.ConversationGraph().Mermaid())
	},
}
