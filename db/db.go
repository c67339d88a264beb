// db/db.go
// BadgerDB 封装：带批量写队列的存储管理器。
// 写请求先进队列，由后台 goroutine 按条数/时间间隔合批落库。
package db

import (
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"vaultmanager/config"
	"vaultmanager/interfaces"
	"vaultmanager/logs"
)

// ErrKeyNotFound 键不存在
var ErrKeyNotFound = errors.New("db: key not found")

var _ interfaces.DBManager = (*Manager)(nil)

// WriteTask 一次写请求
type WriteTask struct {
	Key   string
	Value string
	Del   bool // true 表示删除操作
}

type flushRequest struct {
	done chan error
}

// Manager 封装 BadgerDB 的管理器
type Manager struct {
	Db *badger.DB

	// 队列通道，批量写的 goroutine 用它来取写请求
	writeQueueChan chan WriteTask
	// 强制刷盘通道
	forceFlushChan chan flushRequest
	// 用于通知写队列 goroutine 停止
	stopChan chan struct{}
	wg       sync.WaitGroup

	// 控制"写多少/多长时间"就落库
	maxBatchSize  int
	flushInterval time.Duration

	// 事件日志的自增发号器
	eventSeq *badger.Sequence

	cfg *config.Config

	closeOnce sync.Once
}

// NewManager 打开数据库并启动写队列
func NewManager(path string, cfg *config.Config) (*Manager, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	opts := badger.DefaultOptions(path).
		WithValueLogFileSize(cfg.Database.ValueLogFileSize).
		WithLogger(nil)
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	seq, err := bdb.GetSequence([]byte("seq_event"), cfg.Database.SequenceBandwidth)
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}

	mgr := &Manager{
		Db:             bdb,
		writeQueueChan: make(chan WriteTask, cfg.Database.WriteQueueSize),
		forceFlushChan: make(chan flushRequest, 1),
		stopChan:       make(chan struct{}),
		maxBatchSize:   cfg.Database.MaxBatchSize,
		flushInterval:  cfg.Database.FlushInterval,
		eventSeq:       seq,
		cfg:            cfg,
	}
	mgr.wg.Add(1)
	go mgr.runWriteQueue()
	return mgr, nil
}

// EnqueueSet 写请求入队
func (mgr *Manager) EnqueueSet(key, value string) {
	mgr.writeQueueChan <- WriteTask{Key: key, Value: value}
}

// EnqueueDelete 删除请求入队
func (mgr *Manager) EnqueueDelete(key string) {
	mgr.writeQueueChan <- WriteTask{Key: key, Del: true}
}

// ForceFlush 排空队列并等待落库完成
func (mgr *Manager) ForceFlush() error {
	req := flushRequest{done: make(chan error, 1)}
	mgr.forceFlushChan <- req
	return <-req.done
}

// runWriteQueue 后台批量落库循环
func (mgr *Manager) runWriteQueue() {
	defer mgr.wg.Done()

	batch := make([]WriteTask, 0, mgr.maxBatchSize)
	ticker := time.NewTicker(mgr.flushInterval)
	defer ticker.Stop()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := mgr.writeBatch(batch)
		if err != nil {
			logs.Error("[DB] batch flush failed (%d tasks): %v", len(batch), err)
		}
		batch = batch[:0]
		return err
	}

	for {
		select {
		case task := <-mgr.writeQueueChan:
			batch = append(batch, task)
			if len(batch) >= mgr.maxBatchSize {
				_ = flush()
			}
		case <-ticker.C:
			_ = flush()
		case req := <-mgr.forceFlushChan:
			// 先排空通道里积压的任务
			drained := mgr.drainQueue()
			batch = append(batch, drained...)
			req.done <- flush()
		case <-mgr.stopChan:
			drained := mgr.drainQueue()
			batch = append(batch, drained...)
			_ = flush()
			return
		}
	}
}

func (mgr *Manager) drainQueue() []WriteTask {
	var drained []WriteTask
	for {
		select {
		case task := <-mgr.writeQueueChan:
			drained = append(drained, task)
		default:
			return drained
		}
	}
}

func (mgr *Manager) writeBatch(batch []WriteTask) error {
	return mgr.Db.Update(func(txn *badger.Txn) error {
		for _, task := range batch {
			if task.Del {
				if err := txn.Delete([]byte(task.Key)); err != nil {
					return err
				}
				continue
			}
			if err := txn.Set([]byte(task.Key), []byte(task.Value)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Read 读取单个键；不存在时返回 ErrKeyNotFound
func (mgr *Manager) Read(key string) ([]byte, error) {
	var val []byte
	err := mgr.Db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Scan 前缀扫描，返回所有以 prefix 开头的键值对
func (mgr *Manager) Scan(prefix string) (map[string][]byte, error) {
	result := make(map[string][]byte)
	err := mgr.Db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[string(item.Key())] = val
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// NextEventSeq 下一个事件序号
func (mgr *Manager) NextEventSeq() (uint64, error) {
	return mgr.eventSeq.Next()
}

// Close 停止写队列并关闭数据库
func (mgr *Manager) Close() error {
	var err error
	mgr.closeOnce.Do(func() {
		close(mgr.stopChan)
		mgr.wg.Wait()
		if mgr.eventSeq != nil {
			_ = mgr.eventSeq.Release()
		}
		err = mgr.Db.Close()
	})
	return err
}
