package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacesedan/sentiflow-kv/internal/app"
	"github.com/spacesedan/sentiflow-kv/internal/models"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <sentence>",
		Short: "Classify one sentence and print the JSON response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := json.Marshal(models.SentimentAnalysisRequest{Sentence: strings.Join(args, " ")})
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Service.Handle(cmd.Context(), body)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
