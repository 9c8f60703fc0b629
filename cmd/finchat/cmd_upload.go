package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// uploadCmd uploads a file for the assistant to reference.
var uploadCmd = &cobra.Command{
	Use:   "upload [path]",
	Short: "Upload a document (statement, budget, ...) for the assistant",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, cfg, err := loadClient()
	if err != nil {
		return err
	}

	result, err := client.Upload(cmd.Context(), args[0], cfg.Upload)
	if err != nil {
		return err
	}

	logger.Info("upload complete",
		zap.String("file_id", result.FileID),
		zap.Int64("size", result.Size))
	fmt.Printf("Uploaded %s (%d bytes) as %s\n", result.Name, result.Size, result.FileID)
	return nil
}
