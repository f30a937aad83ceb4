package queue

import "context"

// Dispatcher 把任务投递到后台队列。投递是 fire-and-forget 的：
// 不等待执行、没有完成回执；下游必须容忍同一指纹的重复投递
// （at-least-once），引擎侧不做去重。
type Dispatcher interface {
	Enqueue(ctx context.Context, job Job) error
}
