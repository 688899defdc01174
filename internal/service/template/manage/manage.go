package manage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gitee.com/flycash/sms-unified/internal/domain"
	"gitee.com/flycash/sms-unified/internal/errs"
	"gitee.com/flycash/sms-unified/internal/pkg/validate"
	"gitee.com/flycash/sms-unified/internal/repository"
	"github.com/sony/sonyflake"
)

const (
	templateCodePrefix  = "TPL"
	defaultRejectReason = "模板不符合审核规范"
)

// TemplateService 模板生命周期服务接口
//
//go:generate mockgen -source=./manage.go -destination=../mocks/manage.mock.go -package=templatemocks -typed TemplateService
type TemplateService interface {
	// ApplyTemplate 模板申请，新模板进入待审核状态
	ApplyTemplate(ctx context.Context, req domain.TemplateApplyRequest) (domain.Template, error)

	// ApproveTemplate 审批模板，approved为true时启用，否则拒绝并记录原因
	ApproveTemplate(ctx context.Context, templateCode string, approved bool, reason string) (domain.Template, error)

	// EnableTemplate 启用模板，待审核和已拒绝的模板必须先走审批
	EnableTemplate(ctx context.Context, templateCode string) (domain.Template, error)

	// DisableTemplate 禁用模板
	DisableTemplate(ctx context.Context, templateCode string) (domain.Template, error)

	// DeleteTemplate 逻辑删除模板，删除后不允许任何状态变更
	DeleteTemplate(ctx context.Context, templateCode string) (domain.Template, error)

	// GetTemplate 根据模板编码查询模板
	GetTemplate(ctx context.Context, templateCode string) (domain.Template, error)

	// ListTemplates 列出全部模板，包括已删除的逻辑记录
	ListTemplates(ctx context.Context) ([]domain.Template, error)
}

// templateService 模板服务实现
type templateService struct {
	repo        repository.TemplateRepository
	idGenerator *sonyflake.Sonyflake
}

// NewTemplateService 创建模板服务实例
func NewTemplateService(repo repository.TemplateRepository, idGenerator *sonyflake.Sonyflake) TemplateService {
	return &templateService{
		repo:        repo,
		idGenerator: idGenerator,
	}
}

func (t *templateService) ApplyTemplate(ctx context.Context, req domain.TemplateApplyRequest) (domain.Template, error) {
	if err := req.Validate(); err != nil {
		return domain.Template{}, err
	}

	templateCode, err := t.nextTemplateCode()
	if err != nil {
		return domain.Template{}, err
	}

	now := time.Now()
	template := domain.Template{
		TemplateCode:    templateCode,
		TemplateName:    req.TemplateName,
		TemplateContent: req.TemplateContent,
		Scene:           req.Scene,
		Status:          domain.TemplateStatusPendingApproval,
		CreatedBy:       req.Applicant,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	return t.repo.Create(ctx, template)
}

func (t *templateService) ApproveTemplate(ctx context.Context, templateCode string, approved bool, reason string) (domain.Template, error) {
	template, err := t.getTemplate(ctx, templateCode)
	if err != nil {
		return domain.Template{}, err
	}

	if template.Status != domain.TemplateStatusPendingApproval {
		return domain.Template{}, fmt.Errorf("%w: 只有待审核模板才允许审批，当前状态=%s", errs.ErrInvalidStatus, template.Status)
	}

	if approved {
		template.Status = domain.TemplateStatusEnabled
		template.RejectReason = ""
	} else {
		template.Status = domain.TemplateStatusRejected
		if strings.TrimSpace(reason) == "" {
			reason = defaultRejectReason
		}
		template.RejectReason = reason
	}
	template.UpdatedAt = time.Now()

	return t.repo.Update(ctx, template)
}

func (t *templateService) EnableTemplate(ctx context.Context, templateCode string) (domain.Template, error) {
	template, err := t.getTemplate(ctx, templateCode)
	if err != nil {
		return domain.Template{}, err
	}

	if template.Status == domain.TemplateStatusDeleted {
		return domain.Template{}, fmt.Errorf("%w: 已删除模板无法启用", errs.ErrInvalidStatus)
	}
	if template.Status == domain.TemplateStatusPendingApproval || template.Status == domain.TemplateStatusRejected {
		return domain.Template{}, fmt.Errorf("%w: 当前状态不可启用：%s", errs.ErrInvalidStatus, template.Status)
	}

	template.Status = domain.TemplateStatusEnabled
	template.UpdatedAt = time.Now()
	return t.repo.Update(ctx, template)
}

func (t *templateService) DisableTemplate(ctx context.Context, templateCode string) (domain.Template, error) {
	template, err := t.getTemplate(ctx, templateCode)
	if err != nil {
		return domain.Template{}, err
	}

	if template.Status == domain.TemplateStatusDeleted {
		return domain.Template{}, fmt.Errorf("%w: 已删除模板无法禁用", errs.ErrInvalidStatus)
	}
	if template.Status == domain.TemplateStatusPendingApproval {
		return domain.Template{}, fmt.Errorf("%w: 待审核模板不可禁用，请先完成审批", errs.ErrInvalidStatus)
	}

	template.Status = domain.TemplateStatusDisabled
	template.UpdatedAt = time.Now()
	return t.repo.Update(ctx, template)
}

func (t *templateService) DeleteTemplate(ctx context.Context, templateCode string) (domain.Template, error) {
	template, err := t.getTemplate(ctx, templateCode)
	if err != nil {
		return domain.Template{}, err
	}

	// 删除是终态，重复删除视为非法操作
	if template.Status == domain.TemplateStatusDeleted {
		return domain.Template{}, fmt.Errorf("%w: 模板已删除", errs.ErrInvalidStatus)
	}

	template.Status = domain.TemplateStatusDeleted
	template.UpdatedAt = time.Now()
	return t.repo.Update(ctx, template)
}

func (t *templateService) GetTemplate(ctx context.Context, templateCode string) (domain.Template, error) {
	return t.getTemplate(ctx, templateCode)
}

func (t *templateService) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	return t.repo.List(ctx)
}

func (t *templateService) getTemplate(ctx context.Context, templateCode string) (domain.Template, error) {
	if err := validate.NotBlank("templateCode", templateCode); err != nil {
		return domain.Template{}, err
	}
	return t.repo.GetByCode(ctx, templateCode)
}

// nextTemplateCode 生成模板编码，序号单调递增
func (t *templateService) nextTemplateCode() (string, error) {
	id, err := t.idGenerator.NextID()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrTemplateCodeGenerateFailed, err)
	}
	return fmt.Sprintf("%s%d", templateCodePrefix, id), nil
}
