package service

import (
	"context"
	log "log/slog"
)

// Command 一次乐观更新：先改本地视图，远端失败时恢复到之前捕获的状态
type Command struct {
	Name string

	// Capture 记录回滚需要的前置状态
	Capture func()
	// Apply 立即修改本地视图
	Apply func()
	// Remote 执行真正的远端写入
	Remote func(ctx context.Context) error
	// Revert 用捕获的前置状态恢复本地视图
	Revert func()
}

// RunOptimistic 按 捕获-应用-提交 顺序执行，远端失败时精确回滚
func RunOptimistic(ctx context.Context, cmd *Command) error {
	if cmd.Capture != nil {
		cmd.Capture()
	}
	if cmd.Apply != nil {
		cmd.Apply()
	}

	if err := cmd.Remote(ctx); err != nil {
		log.WarnContext(ctx, "OPTIMISTIC_ROLLBACK", "command", cmd.Name, "err", err)
		if cmd.Revert != nil {
			cmd.Revert()
		}
		return err
	}
	return nil
}
