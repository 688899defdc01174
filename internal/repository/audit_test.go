package repository

import (
	"context"
	"testing"
	"time"

	"gitee.com/flycash/sms-unified/internal/domain"
	"gitee.com/flycash/sms-unified/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSendResult(requestID string) domain.SendResult {
	return domain.SendResult{
		RequestID:    requestID,
		Success:      true,
		ProviderCode: "OK",
		TemplateCode: "TPL1001",
		TemplateName: "登录验证码",
		PhoneCount:   1,
		SendTime:     time.Now(),
		Ext:          map[string]any{"provider": "aliyun"},
	}
}

func TestMemorySendAuditRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	repo := NewMemorySendAuditRepository()

	require.NoError(t, repo.Create(context.Background(), newSendResult("req-1")))

	got, err := repo.GetByRequestID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", got.RequestID)
	assert.True(t, got.Success)
	assert.Equal(t, "aliyun", got.Ext["provider"])
}

func TestMemorySendAuditRepository_WriteOnce(t *testing.T) {
	t.Parallel()
	repo := NewMemorySendAuditRepository()

	require.NoError(t, repo.Create(context.Background(), newSendResult("req-1")))

	// 同一requestID二次写入失败，已有记录不被覆盖
	second := newSendResult("req-1")
	second.Success = false
	err := repo.Create(context.Background(), second)
	assert.ErrorIs(t, err, errs.ErrSendRecordDuplicate)

	got, err := repo.GetByRequestID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.True(t, got.Success)
}

func TestMemorySendAuditRepository_GetNotFound(t *testing.T) {
	t.Parallel()
	repo := NewMemorySendAuditRepository()

	_, err := repo.GetByRequestID(context.Background(), "unknown")
	assert.ErrorIs(t, err, errs.ErrSendRecordNotFound)
}

func TestMemorySendAuditRepository_ReturnedCopyDoesNotAlias(t *testing.T) {
	t.Parallel()
	repo := NewMemorySendAuditRepository()

	original := newSendResult("req-1")
	require.NoError(t, repo.Create(context.Background(), original))

	// 修改写入时传入的对象不影响已存储记录
	original.Ext["provider"] = "hacked"

	got, err := repo.GetByRequestID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "aliyun", got.Ext["provider"])

	// 修改查询返回值也不影响后续查询
	got.Ext["provider"] = "hacked"
	again, err := repo.GetByRequestID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "aliyun", again.Ext["provider"])
}
