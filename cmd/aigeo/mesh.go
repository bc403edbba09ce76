package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pipelineorganics/aigeo/internal/mesh"
	"github.com/urfave/cli/v3"
)

func newMeshCommand() *cli.Command {
	return &cli.Command{
		Name:  "mesh",
		Usage: "Inspect and normalize STL meshes",
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "Print mesh statistics before and after normalization",
				ArgsUsage: "<src>",
				Action:    runMeshInfo,
			},
			{
				Name:      "normalize",
				Usage:     "Center the mesh at the origin, scale it to unit size and write binary STL",
				ArgsUsage: "<src>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "output STL path",
						Required: true,
					},
				},
				Action: runMeshNormalize,
			},
		},
	}
}

// meshSource 取位置参数，缺省时使用配置中的 mesh_source
func meshSource(cmd *cli.Command, a *app) (string, error) {
	src := strings.TrimSpace(cmd.Args().First())
	if src == "" {
		src = a.cfg.MeshSource
	}
	if src == "" {
		return "", fmt.Errorf("usage: aigeo mesh %s <src>", cmd.Name)
	}
	return src, nil
}

func runMeshInfo(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd, false)
	if err != nil {
		return err
	}
	src, err := meshSource(cmd, a)
	if err != nil {
		return err
	}

	g, err := mesh.NewLoader(nil).Load(ctx, src)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	fmt.Fprintf(out, "source: %s\n", src)
	if g.Name != "" {
		fmt.Fprintf(out, "name:   %s\n", g.Name)
	}
	fmt.Fprintln(out, "\noriginal")
	for _, line := range mesh.Measure(g).Lines() {
		fmt.Fprintf(out, "  %s\n", line)
	}

	mesh.Normalize(g)
	fmt.Fprintln(out, "\nnormalized")
	for _, line := range mesh.Measure(g).Lines() {
		fmt.Fprintf(out, "  %s\n", line)
	}
	return nil
}

func runMeshNormalize(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd, false)
	if err != nil {
		return err
	}
	src, err := meshSource(cmd, a)
	if err != nil {
		return err
	}

	g, err := mesh.NewLoader(nil).LoadNormalized(ctx, src)
	if err != nil {
		return err
	}

	path := cmd.String("output")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	if err := mesh.WriteBinary(f, g); err != nil {
		f.Close()
		return fmt.Errorf("写入 STL 失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "wrote %d triangles to %s\n", g.TriangleCount(), path)
	return nil
}
