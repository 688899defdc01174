// Package unified 对外暴露短信统一工具：模板生命周期管理与模板短信发送
// 的单一门面。业务方只依赖本包，供应商实现通过 provider.Provider 注入。
package unified

import (
	"gitee.com/flycash/sms-unified/internal/repository"
	"gitee.com/flycash/sms-unified/internal/service/provider"
	"gitee.com/flycash/sms-unified/internal/service/sender"
	"gitee.com/flycash/sms-unified/internal/service/template/manage"
	"github.com/sony/sonyflake"
)

// Service 短信统一工具门面
type Service interface {
	manage.TemplateService
	sender.Service
}

type tool struct {
	manage.TemplateService
	sender.Service
}

// NewService 组合已有的模板服务与发送服务
func NewService(templateSvc manage.TemplateService, senderSvc sender.Service) Service {
	return &tool{
		TemplateService: templateSvc,
		Service:         senderSvc,
	}
}

// NewTool 基于内存存储构建完整门面，供应商不能为空。
// 生产部署替换两个仓库实现即可接入持久化存储，门面契约不变。
func NewTool(p provider.Provider) (Service, error) {
	templateRepo := repository.NewMemoryTemplateRepository()
	auditRepo := repository.NewMemorySendAuditRepository()

	senderSvc, err := sender.NewService(p, templateRepo, auditRepo)
	if err != nil {
		return nil, err
	}

	idGenerator := sonyflake.NewSonyflake(sonyflake.Settings{
		MachineID: func() (uint16, error) {
			return 1, nil
		},
	})
	templateSvc := manage.NewTemplateService(templateRepo, idGenerator)

	return NewService(templateSvc, senderSvc), nil
}
