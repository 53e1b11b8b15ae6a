package executor

import (
	"context"
	"errors"
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// killTree kills pid and every process it spawned, children first
func killTree(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return os.ErrProcessDone
		}
		return err
	}

	// Children is empty (with an error) once there are none left
	children, _ := p.ChildrenWithContext(ctx)
	for _, child := range children {
		_ = killTree(ctx, child.Pid)
	}

	if err := p.KillWithContext(ctx); err != nil {
		if running, _ := p.IsRunningWithContext(ctx); !running {
			return os.ErrProcessDone
		}
		return err
	}
	return nil
}
