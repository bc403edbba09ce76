package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pipelineorganics/aigeo/internal/config"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func newConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or change the saved configuration",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: runConfigShow,
			},
			{
				Name:      "set-api",
				Usage:     "Save the AI endpoint base URL",
				ArgsUsage: "<url>",
				Action:    runConfigSetAPI,
			},
		},
	}
}

func runConfigShow(_ context.Context, cmd *cli.Command) error {
	a, err := setup(cmd, false)
	if err != nil {
		return err
	}
	path, err := config.Path()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(a.cfg)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	out := cmd.Root().Writer
	fmt.Fprintf(out, "# %s\n", path)
	fmt.Fprintf(out, "# API: %s\n", a.cfg.APIBaseDisplay())
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigSetAPI(_ context.Context, cmd *cli.Command) error {
	base := strings.TrimSpace(cmd.Args().First())
	if base == "" {
		return fmt.Errorf("usage: aigeo config set-api <url>")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("无效的 API 地址: %q", base)
	}

	if err := config.SaveAPIBase(base); err != nil {
		return fmt.Errorf("保存配置失败: %w", err)
	}
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "API base saved to %s\n", path)
	return nil
}
