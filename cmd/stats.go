package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show answer statistics across all conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		sum, err := s.Events().AnswerStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("query answers: %w", err)
		}
		if sum.Answers == 0 {
			fmt.Println("No answers recorded yet.")
			return nil
		}

		fmt.Printf("Conversations:     %d\n", sum.Sessions)
		fmt.Printf("Answers graded:    %d\n", sum.Answers)
		fmt.Printf("Correct:           %d (%.0f%%)\n", sum.Correct, sum.Accuracy()*100)
		fmt.Printf("Correct first try: %d\n", sum.FirstTryHit)

		fmt.Println()
		fmt.Println("By Question")
		fmt.Println(strings.Repeat("─", 40))
		fmt.Printf("%-10s  %8s  %8s  %8s\n", "Question", "Answers", "Correct", "Rate")
		fmt.Println(strings.Repeat("─", 40))
		for _, q := range sum.ByQuestion {
			fmt.Printf("%-10d  %8d  %8d  %7.0f%%\n",
				q.QuestionID, q.Answers, q.Correct, 100*float64(q.Correct)/float64(q.Answers))
		}
		return nil
	},
}
