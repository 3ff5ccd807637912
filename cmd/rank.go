package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/screening"
	"github.com/spigell/resume-rank/internal/server"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidates against a job. The input has the same shape as the POST /rank body",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("input", "i", "-", "request file, - reads stdin")
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func rank(cmd *cobra.Command) {
	ctx := context.Background()

	logger, config := setup()
	defer logger.Sync() //nolint:errcheck

	input, _ := cmd.Flags().GetString("input")

	body, err := readInput(cmd, input)
	if err != nil {
		logger.Fatal("reading ranking request", zap.String("input", input), zap.Error(err))
	}

	fields, err := server.ParseObject(body)
	if err != nil {
		logger.Fatal("parsing ranking request", zap.Error(err))
	}

	job, candidates, err := server.DecodeRankRequest(fields)
	if err != nil {
		logger.Fatal("validating ranking request", zap.Error(err))
	}

	completer, err := newCompleter(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("creating completion provider", zap.Error(err))
	}

	scores, err := newRanker(config, completer, logger).Rank(ctx, job, candidates)
	if err != nil {
		logger.Fatal("ranking candidates", zap.String("job_id", job.JobID), zap.Error(err))
	}

	pretty, err := json.MarshalIndent(struct {
		Rankings []screening.RankingScore `json:"rankings"`
	}{Rankings: scores}, "", "  ")
	if err != nil {
		logger.Fatal("encoding result", zap.Error(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
}
