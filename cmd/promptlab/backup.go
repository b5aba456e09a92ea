package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilkoid/promptlab/pkg/config"
	"github.com/ilkoid/promptlab/pkg/prompts"
	"github.com/ilkoid/promptlab/pkg/s3storage"
	"github.com/ilkoid/promptlab/pkg/utils"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy the prompt library to S3 and back",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "push",
			Short: "Upload the local prompt library",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, backup, err := openBackup()
				if err != nil {
					return err
				}
				defer utils.Close()

				ws, err := prompts.NewFileStore(cfg.Storage.PromptsFile).Load()
				if err != nil {
					return err
				}
				if err := backup.Push(cmd.Context(), ws); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d prompts to s3://%s/%s\n", len(ws.Prompts), cfg.S3.Bucket, cfg.S3.Key)
				return nil
			},
		},
		&cobra.Command{
			Use:   "pull",
			Short: "Replace the local prompt library with the uploaded copy",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, backup, err := openBackup()
				if err != nil {
					return err
				}
				defer utils.Close()

				ws, err := backup.Pull(cmd.Context(), prompts.NewFileStore(cfg.Storage.PromptsFile))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d prompts into %s\n", len(ws.Prompts), cfg.Storage.PromptsFile)
				return nil
			},
		},
	)

	return cmd
}

func openBackup() (*config.AppConfig, *s3storage.Backup, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := s3storage.New(cfg.S3)
	if err != nil {
		utils.Close()
		return nil, nil, err
	}
	return cfg, s3storage.NewBackup(client, cfg.S3.Key), nil
}
