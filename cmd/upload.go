package cmd

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/document"
	"github.com/spigell/resume-rank/internal/storage"
	"github.com/spigell/resume-rank/internal/storage/s3"
)

const defaultUploadPrefix = "resumes"

var uploadCmd = &cobra.Command{
	Use:   "upload <local-file>",
	Short: "Upload a .pdf or .docx resume and print its reference",
	Long: "Upload a .pdf or .docx resume and print its s3:// reference with a presigned download url.\n" +
		"With --presign-only nothing is uploaded and a presigned PUT url for the generated key is printed instead.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		upload(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().Duration("presign-expiry", time.Hour, "lifetime of the printed download url")
	uploadCmd.Flags().String("prefix", defaultUploadPrefix, "key prefix for uploaded resumes")
	uploadCmd.Flags().Bool("presign-only", false, "print a presigned upload url instead of uploading the file")
}

// uploadKey places every upload under its own id so equal file names never collide.
func uploadKey(prefix, localPath string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating upload id: %w", err)
	}
	return path.Join(prefix, id.String(), filepath.Base(localPath)), nil
}

func upload(cmd *cobra.Command, localPath string) {
	ctx := context.Background()

	logger, config := setup()
	defer logger.Sync() //nolint:errcheck

	kind, err := document.KindOf(localPath)
	if err != nil {
		logger.Fatal("checking file type", zap.String("file", localPath), zap.Error(err))
	}

	prefix, _ := cmd.Flags().GetString("prefix")
	expiry, _ := cmd.Flags().GetDuration("presign-expiry")
	presignOnly, _ := cmd.Flags().GetBool("presign-only")

	key, err := uploadKey(prefix, localPath)
	if err != nil {
		logger.Fatal("building storage key", zap.Error(err))
	}

	store, err := newStore(ctx, config.Storage, logger)
	if err != nil {
		logger.Fatal("creating storage client", zap.Error(err))
	}

	if presignOnly {
		url, err := store.Presign(ctx, "", key, expiry, s3.PresignPut)
		if err != nil {
			logger.Fatal("presigning upload url", zap.String("key", key), zap.Error(err))
		}

		uri := storage.Location{Bucket: config.Storage.Bucket, Key: key}.URI()
		logger.Info("presigned resume upload", zap.String("uri", uri), zap.Duration("url_expiry", expiry))

		fmt.Fprintln(cmd.OutOrStdout(), uri)
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return
	}

	f, err := os.Open(localPath)
	if err != nil {
		logger.Fatal("opening file", zap.String("file", localPath), zap.Error(err))
	}
	defer f.Close()

	uri, err := store.Upload(ctx, f, "", key, kind.ContentType())
	if err != nil {
		logger.Fatal("uploading resume", zap.String("key", key), zap.Error(err))
	}

	url, err := store.Presign(ctx, "", key, expiry, s3.PresignGet)
	if err != nil {
		logger.Fatal("presigning resume url", zap.String("key", key), zap.Error(err))
	}

	logger.Info("uploaded resume", zap.String("uri", uri), zap.Duration("url_expiry", expiry))

	fmt.Fprintln(cmd.OutOrStdout(), uri)
	fmt.Fprintln(cmd.OutOrStdout(), url)
}
