package provider

import (
	"context"

	"gitee.com/flycash/sms-unified/internal/domain"
)

// Provider 短信发送供应商抽象，是本工具对接真实短信SDK的唯一边界。
// 实现方负责把请求映射到具体供应商接口，传输或供应商层面的失败以error返回。
//
//go:generate mockgen -source=./provider.go -destination=./mocks/provider.mock.go -package=providermocks -typed Provider
type Provider interface {
	// Send 发送一次请求，本工具不做重试
	Send(ctx context.Context, req domain.SendRequest) (domain.SendResult, error)
}
