package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pipelineorganics/aigeo/internal/export"
	"github.com/urfave/cli/v3"
)

func newAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Submit one prompt and print the answer",
		ArgsUsage: "<prompt...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "html",
				Usage: "also render the answer as Markdown into this HTML file",
			},
		},
		Action: runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	prompt := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("usage: aigeo ask <prompt...>")
	}

	a, err := setup(cmd, false)
	if err != nil {
		return err
	}

	root := cmd.Root()
	state, _ := a.newFlow().Submit(ctx, prompt)
	if state.HasError() {
		fmt.Fprintln(root.ErrWriter, state.ErrorText())
		return errReported
	}

	fmt.Fprintln(root.Writer, state.AnswerText())

	if path := cmd.String("html"); path != "" {
		if err := export.ExportHTML(path, strings.TrimSpace(prompt), state.AnswerText()); err != nil {
			return err
		}
		fmt.Fprintf(root.ErrWriter, "exported to %s\n", path)
	}
	return nil
}
