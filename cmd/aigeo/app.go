package main

import (
	"errors"
	"fmt"

	"github.com/pipelineorganics/aigeo/internal/api"
	"github.com/pipelineorganics/aigeo/internal/config"
	"github.com/pipelineorganics/aigeo/internal/logger"
	"github.com/pipelineorganics/aigeo/internal/session"
	"github.com/pipelineorganics/aigeo/internal/utils"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// errReported 表示错误信息已经写给用户，main 只需返回非零退出码
var errReported = errors.New("reported")

// app 是一次命令执行期间共享的依赖
type app struct {
	cfg     *config.Config
	history *utils.History
}

// setup 加载配置、应用全局参数并初始化日志。
// interactive 为 true 时 TUI 占用终端，日志只写文件；
// 其它命令在显式指定 --log-level 时额外输出到 stderr。
func setup(cmd *cli.Command, interactive bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	if cmd.IsSet("mesh") {
		cfg.MeshSource = cmd.String("mesh")
	}
	if cmd.IsSet("log-level") {
		cfg.Logging.Level = cmd.String("log-level")
	}

	console := !interactive && cmd.IsSet("log-level")
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File, console); err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	history, err := utils.DefaultHistory(cfg.HistoryLimit)
	if err != nil {
		return nil, err
	}

	logger.Info("aigeo starting",
		zap.String("version", Version),
		zap.String("api_base", cfg.APIBaseDisplay()),
		zap.String("mesh_source", cfg.MeshSource),
	)

	return &app{cfg: cfg, history: history}, nil
}

// newFlow 创建提交流程，最新一次提交完成后写入历史
func (a *app) newFlow() *session.Flow {
	client := api.NewClient(a.cfg.APIBase, api.WithTimeout(a.cfg.RequestTimeout))
	flow := session.NewFlow(client)
	flow.OnSettled = func(o session.Outcome) {
		errText := ""
		if o.Err != nil {
			errText = api.UserMessage(o.Err)
		}
		if _, err := a.history.Append(o.Prompt, o.Answer, errText); err != nil {
			logger.Warn("history append failed", zap.String("path", a.history.Path()), zap.Error(err))
		}
	}
	return flow
}

func shutdown() {
	logger.Sync()
}
