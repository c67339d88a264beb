// db/event_journal.go
// 追加式事件日志。每条通知落一个带序号的键，值为 JSON，
// 并用 murmur 哈希生成紧凑 ID 便于对账去重。
package db

import (
	"encoding/json"
	"sort"
	"time"

	"vaultmanager/interfaces"
	"vaultmanager/keys"
	"vaultmanager/logs"
	"vaultmanager/types"
	"vaultmanager/utils"
)

// EventJournal 实现 interfaces.EventSink，把账本事件持久化
type EventJournal struct {
	mgr interfaces.DBManager
}

var _ interfaces.EventSink = (*EventJournal)(nil)

// NewEventJournal 创建事件日志
func NewEventJournal(mgr interfaces.DBManager) *EventJournal {
	return &EventJournal{mgr: mgr}
}

// Emit 落一条事件。日志失败只记 error，不阻塞账本操作。
func (j *EventJournal) Emit(evt types.BaseEvent) {
	payload, err := json.Marshal(evt.EventData)
	if err != nil {
		logs.Error("[EventJournal] failed to marshal event %s: %v", evt.EventType, err)
		return
	}
	rec := types.EventRecord{
		ID:        utils.EventID(payload),
		EventType: evt.EventType,
		Payload:   json.RawMessage(payload),
		Timestamp: time.Now().Unix(),
	}
	data, err := json.Marshal(&rec)
	if err != nil {
		logs.Error("[EventJournal] failed to marshal record: %v", err)
		return
	}
	seq, err := j.mgr.NextEventSeq()
	if err != nil {
		logs.Error("[EventJournal] failed to allocate event seq: %v", err)
		return
	}
	j.mgr.EnqueueSet(keys.KeyEvent(seq), string(data))
}

// Load 按写入顺序读出全部事件记录
func (j *EventJournal) Load() ([]types.EventRecord, error) {
	raw, err := j.mgr.Scan(keys.NameOfKeyEvent())
	if err != nil {
		return nil, err
	}
	journalKeys := make([]string, 0, len(raw))
	for k := range raw {
		journalKeys = append(journalKeys, k)
	}
	sort.Strings(journalKeys) // 键是零填充序号，字典序即写入序

	out := make([]types.EventRecord, 0, len(journalKeys))
	for _, k := range journalKeys {
		var rec types.EventRecord
		if err := json.Unmarshal(raw[k], &rec); err != nil {
			logs.Warn("[EventJournal] skipping corrupt event %s: %v", k, err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
