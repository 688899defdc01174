package sms

import (
	"context"
	"fmt"

	"gitee.com/flycash/sms-unified/internal/domain"
	"gitee.com/flycash/sms-unified/internal/errs"
	"gitee.com/flycash/sms-unified/internal/service/provider"
	"gitee.com/flycash/sms-unified/internal/service/provider/sms/client"
)

// smsProvider 基于具体短信客户端的供应商实现
type smsProvider struct {
	name   string
	client client.Client
}

// NewSMSProvider 用指定客户端构建短信供应商
func NewSMSProvider(name string, c client.Client) provider.Provider {
	return &smsProvider{
		name:   name,
		client: c,
	}
}

// Send 发送短信
func (p *smsProvider) Send(_ context.Context, req domain.SendRequest) (domain.SendResult, error) {
	resp, err := p.client.Send(client.SendReq{
		PhoneNumbers:  req.Phones,
		SignName:      req.SignName,
		TemplateID:    req.TemplateCode,
		TemplateParam: req.TemplateParams,
	})
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("%w: %w", errs.ErrSendSMSFailed, err)
	}

	result := domain.SendResult{
		RequestID:    resp.RequestID,
		Success:      true,
		ProviderCode: client.OK,
		Ext:          map[string]any{"provider": p.name},
	}
	// 任意一个号码非OK即视为本次调用失败
	for phone, status := range resp.PhoneNumbers {
		result.Ext["status:"+phone] = status.Code
		if status.Code != client.OK {
			result.Success = false
			result.ProviderCode = status.Code
			result.ProviderMessage = status.Message
		}
	}
	return result, nil
}
