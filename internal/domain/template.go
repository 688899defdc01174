package domain

import (
	"fmt"
	"strings"
	"time"

	"gitee.com/flycash/sms-unified/internal/errs"
)

// TemplateStatus 模板状态
type TemplateStatus string

const (
	TemplateStatusPendingApproval TemplateStatus = "PENDING_APPROVAL" // 待审核
	TemplateStatusEnabled         TemplateStatus = "ENABLED"          // 已启用
	TemplateStatusDisabled        TemplateStatus = "DISABLED"         // 已禁用
	TemplateStatusRejected        TemplateStatus = "REJECTED"         // 审核拒绝
	TemplateStatusDeleted         TemplateStatus = "DELETED"          // 已删除，终态
)

func (s TemplateStatus) String() string {
	return string(s)
}

// Template 短信模板领域模型
type Template struct {
	TemplateCode    string         // 模板编码，系统生成，全局唯一
	TemplateName    string         // 模板名称
	TemplateContent string         // 模板内容，${xxx}占位符格式，本层不解析
	Scene           string         // 使用场景标签
	Status          TemplateStatus // 当前状态
	RejectReason    string         // 仅审核拒绝时填写
	CreatedBy       string         // 申请人
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanSend 模板是否处于可发送状态
func (t Template) CanSend() bool {
	return t.Status == TemplateStatusEnabled
}

// TemplateApplyRequest 模板申请请求
type TemplateApplyRequest struct {
	TemplateName    string
	TemplateContent string
	Scene           string
	Applicant       string
}

func (r TemplateApplyRequest) Validate() error {
	if strings.TrimSpace(r.TemplateName) == "" || strings.TrimSpace(r.TemplateContent) == "" {
		return fmt.Errorf("%w: 模板名称和模板内容不能为空", errs.ErrInvalidParameter)
	}
	return nil
}
