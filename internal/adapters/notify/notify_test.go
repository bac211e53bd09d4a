package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockSim/internal/domain"
)

type mockLogger struct {
	infoMsgs []string
	warnMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestLogNotifier(t *testing.T) {
	logger := &mockLogger{}
	n := NewLogNotifier(logger)

	n.Notify(context.Background(), domain.NotifySuccess, "bought")
	n.Notify(context.Background(), domain.NotifyError, "rejected")

	assert.Equal(t, []string{"bought"}, logger.infoMsgs)
	assert.Equal(t, []string{"rejected"}, logger.warnMsgs)
}

func TestRecorder_CapsAndOrders(t *testing.T) {
	r := NewRecorder(0)
	for i := 0; i < DefaultCapacity+5; i++ {
		r.Notify(context.Background(), domain.NotifyInfo, fmt.Sprintf("msg %d", i))
	}

	items := r.Notifications()
	require.Len(t, items, DefaultCapacity)
	assert.Equal(t, "msg 54", items[0].Message)
	assert.Equal(t, "msg 5", items[len(items)-1].Message)
	assert.NotEmpty(t, items[0].ID)
}

func TestRecorder_Drain(t *testing.T) {
	r := NewRecorder(3)
	r.Notify(context.Background(), domain.NotifyInfo, "a")
	r.Notify(context.Background(), domain.NotifyWarning, "b")

	items := r.Drain()
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].Message)
	assert.Equal(t, domain.NotifyWarning, items[0].Type)
	assert.Empty(t, r.Notifications())
	assert.Empty(t, r.Drain())

	r.Notify(context.Background(), domain.NotifyInfo, "c")
	assert.Len(t, r.Notifications(), 1)
	assert.Len(t, items, 2, "drained slice is not reused")
}

func TestFanout(t *testing.T) {
	a, b := NewRecorder(5), NewRecorder(5)
	Fanout{a, b}.Notify(context.Background(), domain.NotifySuccess, "hello")

	assert.Len(t, a.Notifications(), 1)
	assert.Len(t, b.Notifications(), 1)
}
