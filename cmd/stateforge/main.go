package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/stateforge/stateforge/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "stateforge",
		Usage:                 "Validate workflow definitions",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			{
				Name:    "validate",
				Aliases: []string{"v"},
				Usage:   "Validate a workflow definition file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the workflow definition in wire format",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "directory-snapshot",
						Usage:   "Path to a JSON directory snapshot; enables data validation",
						Sources: cli.EnvVars("DIRECTORY_SNAPSHOT"),
					},
					&cli.StringFlag{
						Name:    "log-level",
						Usage:   "Log level (debug, info, warn, error)",
						Value:   "info",
						Sources: cli.EnvVars("LOG_LEVEL"),
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					log.Setup(command.String("log-level"))

					return runValidate(ctx, command)
				},
			},
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
