package sender

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"gitee.com/flycash/sms-unified/internal/domain"
	"gitee.com/flycash/sms-unified/internal/errs"
	"gitee.com/flycash/sms-unified/internal/pkg/validate"
	"gitee.com/flycash/sms-unified/internal/repository"
	"gitee.com/flycash/sms-unified/internal/service/provider"
	"github.com/gofrs/uuid"
	"github.com/gotomicro/ego/core/elog"
)

// 供应商调用抛错时写入审计记录的统一状态码
const invokerExceptionCode = "INVOKER_EXCEPTION"

// Service 模板短信发送接口
//
//go:generate mockgen -source=./sender.go -destination=./mocks/sender.mock.go -package=sendermocks -typed Service
type Service interface {
	// SendTemplateSingle 模板短信单发
	SendTemplateSingle(ctx context.Context, templateCode, phone string, templateParams map[string]string, signName, channel string) (domain.SendResult, error)

	// SendTemplateBatch 模板短信批量发送，单个号码失败不会中断整批
	SendTemplateBatch(ctx context.Context, templateCode string, phones []string, templateParams map[string]string, signName, channel string) (domain.BatchSendResult, error)

	// QuerySendResult 根据requestID查询发送审计记录
	QuerySendResult(ctx context.Context, requestID string) (domain.SendResult, error)
}

// sender 发送服务实现
type sender struct {
	provider     provider.Provider
	templateRepo repository.TemplateRepository
	auditRepo    repository.SendAuditRepository
	logger       *elog.Component
}

// NewService 创建发送服务，供应商不能为空
func NewService(
	p provider.Provider,
	templateRepo repository.TemplateRepository,
	auditRepo repository.SendAuditRepository,
) (Service, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: 短信供应商不能为空", errs.ErrInvalidParameter)
	}
	return &sender{
		provider:     p,
		templateRepo: templateRepo,
		auditRepo:    auditRepo,
		logger:       elog.DefaultLogger,
	}, nil
}

func (s *sender) SendTemplateSingle(ctx context.Context, templateCode, phone string, templateParams map[string]string, signName, channel string) (domain.SendResult, error) {
	if err := validate.Phone(phone); err != nil {
		return domain.SendResult{}, err
	}
	if err := s.validateCommonParams(signName, channel); err != nil {
		return domain.SendResult{}, err
	}
	template, err := s.sendableTemplate(ctx, templateCode)
	if err != nil {
		return domain.SendResult{}, err
	}

	req := s.buildRequest(templateCode, []string{phone}, templateParams, signName, channel)
	result, err := s.provider.Send(ctx, req)
	if err != nil {
		// 单发路径直接向调用方暴露供应商失败
		return domain.SendResult{}, fmt.Errorf("%w: %w", errs.ErrSendSMSFailed, err)
	}
	return s.enrichAndAudit(ctx, result, template)
}

func (s *sender) SendTemplateBatch(ctx context.Context, templateCode string, phones []string, templateParams map[string]string, signName, channel string) (domain.BatchSendResult, error) {
	if err := validate.Phones(phones); err != nil {
		return domain.BatchSendResult{}, err
	}
	if err := s.validateCommonParams(signName, channel); err != nil {
		return domain.BatchSendResult{}, err
	}

	deduplicated := deduplicatePhones(phones)
	for _, phone := range deduplicated {
		if err := validate.Phone(phone); err != nil {
			return domain.BatchSendResult{}, err
		}
	}

	template, err := s.sendableTemplate(ctx, templateCode)
	if err != nil {
		return domain.BatchSendResult{}, err
	}

	details := make([]domain.SendResult, 0, len(deduplicated))
	succeeded := 0
	for _, phone := range deduplicated {
		req := s.buildRequest(templateCode, []string{phone}, templateParams, signName, channel)
		result, err1 := s.provider.Send(ctx, req)
		if err1 != nil {
			// 批量路径把失败转成记录，继续处理剩余号码
			s.logger.Warn("单个号码发送失败",
				elog.String("templateCode", templateCode),
				elog.String("phone", phone),
				elog.FieldErr(err1))
			result = domain.SendResult{
				Success:         false,
				ProviderCode:    invokerExceptionCode,
				ProviderMessage: err1.Error(),
			}
		}

		audited, err2 := s.enrichAndAudit(ctx, result, template)
		if err2 != nil {
			return domain.BatchSendResult{}, err2
		}
		if audited.Success {
			succeeded++
		}
		details = append(details, audited)
	}

	return domain.BatchSendResult{
		Total:   len(deduplicated),
		Success: succeeded,
		Failed:  len(deduplicated) - succeeded,
		Results: details,
	}, nil
}

func (s *sender) QuerySendResult(ctx context.Context, requestID string) (domain.SendResult, error) {
	if err := validate.NotBlank("requestId", requestID); err != nil {
		return domain.SendResult{}, err
	}
	return s.auditRepo.GetByRequestID(ctx, requestID)
}

// enrichAndAudit 补全发送结果并写入审计仓库，返回独立副本
func (s *sender) enrichAndAudit(ctx context.Context, result domain.SendResult, template domain.Template) (domain.SendResult, error) {
	if strings.TrimSpace(result.RequestID) == "" {
		result.RequestID = s.newRequestID()
	}
	result.TemplateCode = template.TemplateCode
	result.TemplateName = template.TemplateName
	result.PhoneCount = 1
	result.SendTime = time.Now()

	err := s.auditRepo.Create(ctx, result)
	if errors.Is(err, errs.ErrSendRecordDuplicate) {
		// 供应商返回了重复的requestID，换本地生成的ID重写，不覆盖已有记录
		s.logger.Warn("供应商返回重复requestID，已重新生成",
			elog.String("requestID", result.RequestID),
			elog.String("templateCode", result.TemplateCode))
		result.RequestID = s.newRequestID()
		err = s.auditRepo.Create(ctx, result)
	}
	if err != nil {
		return domain.SendResult{}, err
	}
	return result.Copy(), nil
}

// sendableTemplate 加载模板并确认处于可发送状态
func (s *sender) sendableTemplate(ctx context.Context, templateCode string) (domain.Template, error) {
	if err := validate.NotBlank("templateCode", templateCode); err != nil {
		return domain.Template{}, err
	}
	template, err := s.templateRepo.GetByCode(ctx, templateCode)
	if err != nil {
		return domain.Template{}, err
	}
	if !template.CanSend() {
		return domain.Template{}, fmt.Errorf("%w: 模板不可发送，当前状态=%s", errs.ErrInvalidStatus, template.Status)
	}
	return template, nil
}

func (s *sender) validateCommonParams(signName, channel string) error {
	if err := validate.NotBlank("signName", signName); err != nil {
		return err
	}
	return validate.NotBlank("channel", channel)
}

func (s *sender) buildRequest(templateCode string, phones []string, templateParams map[string]string, signName, channel string) domain.SendRequest {
	params := map[string]string{}
	if templateParams != nil {
		params = maps.Clone(templateParams)
	}
	return domain.SendRequest{
		TemplateCode:   templateCode,
		Phones:         phones,
		TemplateParams: params,
		SignName:       signName,
		Channel:        channel,
	}
}

func (s *sender) newRequestID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// deduplicatePhones 去重并保留首次出现顺序
func deduplicatePhones(phones []string) []string {
	seen := make(map[string]struct{}, len(phones))
	deduplicated := make([]string, 0, len(phones))
	for _, phone := range phones {
		if _, ok := seen[phone]; ok {
			continue
		}
		seen[phone] = struct{}{}
		deduplicated = append(deduplicated, phone)
	}
	return deduplicated
}
