// 最简单的协程池：启动size个worker，每个worker运行同一个workerFn
// 任务分配由workerFn自己从channel中读取，pool本身不关心任务类型
// NOTE: 注意当前实现没有处理worker崩溃、需要重启等问题
package routingpool

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrEmptyPool      = errors.New("pool size must be positive")
	ErrAlreadyStarted = errors.New("pool already started")
)

type SimpleRoutingPool struct {
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool

	ctx      context.Context
	size     uint32
	workerFn func(ctx context.Context, id uint32)
}

func NewSimpleRoutingPool(ctx context.Context, size uint32, workerFn func(ctx context.Context, id uint32)) RoutingPool {
	return &SimpleRoutingPool{
		ctx:      ctx,
		size:     size,
		workerFn: workerFn,
	}
}

func (s *SimpleRoutingPool) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.size == 0 {
		return ErrEmptyPool
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	var i uint32
	for ; i != s.size; i++ {
		s.wg.Add(1)
		go func(id uint32) {
			defer s.wg.Done()
			s.workerFn(s.ctx, id)
		}(i)
	}
	return nil
}

// 等待所有worker退出，worker需要自行监听ctx或者输入channel的关闭
func (s *SimpleRoutingPool) Stop() {
	s.wg.Wait()
}
