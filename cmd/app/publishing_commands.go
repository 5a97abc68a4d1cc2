package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/postflow/cmd/app/commands"
	"github.com/allisson/postflow/internal/app"
	"github.com/allisson/postflow/internal/config"
)

func getPublishingCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run-due-scheduled",
			Usage: "Publish every scheduled post whose time has come, once",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				schedulerUseCase, err := container.SchedulerUseCase()
				if err != nil {
					return err
				}

				return commands.RunDueScheduled(
					ctx,
					schedulerUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "retry-post",
			Usage: "Retry the failed targets of a post and publish them again",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Post ID (UUID)",
				},
				&cli.BoolFlag{
					Name:    "pending-only",
					Aliases: []string{"p"},
					Value:   false,
					Usage:   "Only publish targets still pending, without resetting failed ones",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				postUseCase, err := container.PostUseCase()
				if err != nil {
					return err
				}

				return commands.RunRetryPost(
					ctx,
					postUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.Bool("pending-only"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "seal-credentials",
			Usage: "Encrypt platform credentials for storage on a linked account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "access-token",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Platform access token",
				},
				&cli.StringFlag{
					Name:    "access-token-secret",
					Aliases: []string{"s"},
					Usage:   "Platform access token secret (OAuth 1.0a platforms only)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keeper, err := container.CredentialsKeeper(ctx)
				if err != nil {
					return err
				}

				return commands.RunSealCredentials(
					ctx,
					keeper,
					commands.DefaultIO().Writer,
					cmd.String("access-token"),
					cmd.String("access-token-secret"),
				)
			},
		},
	}
}
