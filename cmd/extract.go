package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/document"
	"github.com/spigell/resume-rank/internal/storage"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file-ref]",
	Short: "Extract a structured profile from a stored resume (key or s3://bucket/key)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		extract(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func extract(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, config := setup()
	defer logger.Sync() //nolint:errcheck

	var ref string
	if len(args) == 1 {
		ref = args[0]
	} else {
		var err error
		ref, err = askReference()
		if err != nil {
			logger.Fatal("reading the resume reference", zap.Error(err))
		}
	}

	completer, err := newCompleter(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("creating completion provider", zap.Error(err))
	}

	extractor, err := newExtractor(ctx, config, completer, logger)
	if err != nil {
		logger.Fatal("creating extractor", zap.Error(err))
	}

	resume, err := extractor.Extract(ctx, ref)
	if err != nil {
		logger.Fatal("extracting resume", zap.String("file_ref", ref), zap.Error(err))
	}

	pretty, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		logger.Fatal("encoding result", zap.Error(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
}

var promptReference = func() (string, error) {
	p := promptui.Prompt{
		Label:    "Resume key or s3:// uri",
		Validate: validateReference,
	}
	return p.Run()
}

func askReference() (string, error) {
	ref, err := promptReference()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(ref), nil
}

func validateReference(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return errors.New("reference is required")
	}

	loc, err := storage.Resolve(input)
	if err != nil {
		return err
	}

	_, err = document.KindOf(loc.Key)
	return err
}
