package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pipelineorganics/aigeo/internal/mesh"
	"github.com/pipelineorganics/aigeo/internal/tui"
	"github.com/urfave/cli/v3"
)

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "aigeo",
		Usage:   "Ask the AI designer for printable geometry and preview meshes",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mesh",
				Usage: "STL file path or http(s) URL shown in the preview panel",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			newAskCommand(),
			newMeshCommand(),
			newConfigCommand(),
		},
		Action: runTUI,
	}
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd, isTerminal())
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if !isTerminal() {
		// 非交互式环境，使用简单模式
		fmt.Fprintln(out, "aigeo 运行在非交互式模式")
		fmt.Fprintln(out, "请在交互式终端中运行以获得完整TUI体验，或使用 aigeo ask <prompt>")
		fmt.Fprintf(out, "API: %s\n", a.cfg.APIBaseDisplay())
		return nil
	}

	tui.Version = Version
	model := tui.InitialModel(tui.Options{
		Flow:       a.newFlow(),
		APIBase:    a.cfg.APIBase,
		Loader:     mesh.NewLoader(nil),
		MeshSource: a.cfg.MeshSource,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("程序运行错误: %w", err)
	}
	return nil
}
