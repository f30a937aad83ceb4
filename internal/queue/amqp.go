package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// 所有任务队列在启动时一次性声明，durable，worker 侧按队列消费。
var allKinds = []Kind{
	KindPopulateURLCache,
	KindMirrorFile,
	KindMirrorFileAria2,
	KindSyncMetadata,
}

// AMQPDispatcher 基于 AMQP 0-9-1 实现 Dispatcher。连接断开后在下一次
// 投递时惰性重建 channel；投递失败只返回错误，由调用方决定降级。
type AMQPDispatcher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPDispatcher 建立连接并声明全部任务队列。
func NewAMQPDispatcher(url string) (*AMQPDispatcher, error) {
	d := &AMQPDispatcher{url: url}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureChannelLocked(); err != nil {
		return nil, err
	}
	return d, nil
}

// Enqueue 实现 Dispatcher：JSON 载荷 + persistent 投递。
func (d *AMQPDispatcher) Enqueue(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("序列化任务失败: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureChannelLocked(); err != nil {
		return err
	}

	err = d.ch.PublishWithContext(ctx,
		"",                   // 默认交换机
		job.Kind.QueueName(), // routing key 即队列名
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		// 连接可能已失效，丢弃让下一次投递重建。
		d.teardownLocked()
		return fmt.Errorf("投递任务失败: %w", err)
	}
	return nil
}

// Close 关闭底层连接。
func (d *AMQPDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	d.ch = nil
	return err
}

func (d *AMQPDispatcher) ensureChannelLocked() error {
	if d.ch != nil && !d.ch.IsClosed() {
		return nil
	}

	if d.conn == nil || d.conn.IsClosed() {
		conn, err := amqp.Dial(d.url)
		if err != nil {
			return fmt.Errorf("连接队列失败: %w", err)
		}
		d.conn = conn
	}

	ch, err := d.conn.Channel()
	if err != nil {
		d.teardownLocked()
		return fmt.Errorf("打开 channel 失败: %w", err)
	}
	for _, kind := range allKinds {
		if _, err := ch.QueueDeclare(kind.QueueName(), true, false, false, false, nil); err != nil {
			_ = ch.Close()
			d.teardownLocked()
			return fmt.Errorf("声明队列 %s 失败: %w", kind.QueueName(), err)
		}
	}
	d.ch = ch
	return nil
}

func (d *AMQPDispatcher) teardownLocked() {
	if d.conn != nil {
		_ = d.conn.Close()
	}
	d.conn = nil
	d.ch = nil
}
