package repository

import (
	"context"
	"fmt"

	"gitee.com/flycash/sms-unified/internal/domain"
	"gitee.com/flycash/sms-unified/internal/errs"
	ca "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

var errKeyExists = errors.New("key already exists")

// SendAuditRepository 发送审计仓库，只追加和查询，不提供更新删除
//
//go:generate mockgen -source=./audit.go -destination=./mocks/audit.mock.go -package=repomocks -typed SendAuditRepository
type SendAuditRepository interface {
	// Create 以requestID为主键写入一条发送记录，主键冲突时报错
	Create(ctx context.Context, result domain.SendResult) error

	// GetByRequestID 根据requestID精确查询发送记录
	GetByRequestID(ctx context.Context, requestID string) (domain.SendResult, error)
}

type memorySendAuditRepository struct {
	c *ca.Cache
}

// NewMemorySendAuditRepository 创建内存审计仓库，记录永不过期
func NewMemorySendAuditRepository() SendAuditRepository {
	return &memorySendAuditRepository{
		c: ca.New(ca.NoExpiration, 0),
	}
}

func (m *memorySendAuditRepository) Create(_ context.Context, result domain.SendResult) error {
	// Add 在键已存在时失败，保证记录写入后不可覆盖
	if err := m.c.Add(result.RequestID, result.Copy(), ca.NoExpiration); err != nil {
		return fmt.Errorf("%w: requestID=%s: %w", errs.ErrSendRecordDuplicate, result.RequestID, errKeyExists)
	}
	return nil
}

func (m *memorySendAuditRepository) GetByRequestID(_ context.Context, requestID string) (domain.SendResult, error) {
	v, ok := m.c.Get(requestID)
	if !ok {
		return domain.SendResult{}, fmt.Errorf("%w: requestID=%s", errs.ErrSendRecordNotFound, requestID)
	}
	return v.(domain.SendResult).Copy(), nil
}
