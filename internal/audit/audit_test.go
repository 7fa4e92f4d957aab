package audit

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestEmitAndDrainOnClose(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sink := NewSink(logger, 16)

	sink.Emit("ingestion.completed", "fbi", map[string]interface{}{"fetched": 3})
	sink.Emit("case.merged", "namus", map[string]interface{}{"case_id": uint64(7)})
	sink.Close()

	entries := hook.AllEntries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "ingestion.completed", entries[0].Data["audit_action"])
	assert.Equal(t, "case.merged", entries[1].Data["audit_action"])
}

func TestEmitNeverBlocksWhenBufferFull(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sink := &Sink{ch: make(chan Event, 1), logger: logger}
	// 不起消费goroutine：第二条事件只能丢弃，Emit不得阻塞
	sink.Emit("a", "fbi", nil)
	sink.Emit("b", "fbi", nil)
	assert.Len(t, sink.ch, 1)
}

func TestCloseIsIdempotent(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sink := NewSink(logger, 4)
	sink.Close()
	sink.Close() // 二次Close不得panic
}

func TestEmitAfterCloseIsDropped(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sink := NewSink(logger, 4)

	sink.Emit("ingestion.completed", "fbi", nil)
	sink.Close()
	// 退出超时后在途运行仍可能发事件：不得panic，静默丢弃
	sink.Emit("ingestion.failed", "fbi", nil)
	sink.Emit("case.merged", "namus", nil)

	entries := hook.AllEntries()
	assert.Len(t, entries, 1)
	assert.Equal(t, "ingestion.completed", entries[0].Data["audit_action"])
}
