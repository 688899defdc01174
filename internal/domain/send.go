package domain

import (
	"maps"
	"time"
)

// SendRequest 一次发送调用的请求，构造后不再修改
type SendRequest struct {
	TemplateCode   string
	Phones         []string
	TemplateParams map[string]string // 渲染模板占位符的参数，传给供应商时永不为nil
	SignName       string
	Channel        string
}

// SendResult 单次发送结果，requestID 为审计记录主键
type SendResult struct {
	RequestID       string
	Success         bool
	ProviderCode    string
	ProviderMessage string
	TemplateCode    string
	TemplateName    string
	PhoneCount      int
	SendTime        time.Time
	Ext             map[string]any // 供应商附加字段
}

// Copy 返回独立副本，Ext 不共享底层map
func (r SendResult) Copy() SendResult {
	cp := r
	if r.Ext == nil {
		cp.Ext = make(map[string]any)
	} else {
		cp.Ext = maps.Clone(r.Ext)
	}
	return cp
}

// BatchSendResult 批量发送结果，Results 与去重后的手机号顺序一致
type BatchSendResult struct {
	Total   int
	Success int
	Failed  int
	Results []SendResult
}
