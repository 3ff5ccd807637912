package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/storage"
)

var removeCmd = &cobra.Command{
	Use:   "remove <file-ref>",
	Short: "Delete a stored resume (key or s3://bucket/key)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		remove(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)

	removeCmd.Flags().Bool("missing-ok", false, "do not fail when the object does not exist")
}

func remove(cmd *cobra.Command, ref string) {
	ctx := context.Background()

	logger, config := setup()
	defer logger.Sync() //nolint:errcheck

	loc, err := storage.Resolve(ref)
	if err != nil {
		logger.Fatal("parsing reference", zap.String("file_ref", ref), zap.Error(err))
	}

	store, err := newStore(ctx, config.Storage, logger)
	if err != nil {
		logger.Fatal("creating storage client", zap.Error(err))
	}

	exists, err := store.Exists(ctx, loc.Bucket, loc.Key)
	if err != nil {
		logger.Fatal("checking resume", zap.String("file_ref", ref), zap.Error(err))
	}

	if !exists {
		missingOK, _ := cmd.Flags().GetBool("missing-ok")
		if !missingOK {
			logger.Fatal("resume does not exist", zap.String("file_ref", ref))
		}
		logger.Info("resume does not exist, nothing to remove", zap.String("file_ref", ref))
		return
	}

	if err := store.Delete(ctx, loc.Bucket, loc.Key); err != nil {
		logger.Fatal("removing resume", zap.String("file_ref", ref), zap.Error(err))
	}

	logger.Info("removed resume", zap.String("file_ref", ref))
	fmt.Fprintln(cmd.OutOrStdout(), ref)
}
