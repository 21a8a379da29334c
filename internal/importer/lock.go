package importer

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLockHeld 表示锁已被另一次运行持有。这不是错误：调用方应静默地以
// 成功状态退出，而不是排队或重试。
var ErrLockHeld = errors.New("import lock held by another run")

// runLock 封装导入任务的非阻塞排他文件锁。
type runLock struct {
	fl *flock.Flock
}

// acquireLock 尝试拿到锁文件的排他锁，已被持有时返回 ErrLockHeld。
func acquireLock(path string) (*runLock, error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire import lock: %w", err)
	}
	if !locked {
		return nil, ErrLockHeld
	}
	return &runLock{fl: fl}, nil
}

// release 无条件释放锁，运行结束（无论成败）时通过 defer 调用。
func (l *runLock) release() {
	_ = l.fl.Unlock()
}
