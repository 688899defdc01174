package main

import (
	"context"
	"fmt"

	"gitee.com/flycash/sms-unified/cmd/platform/ioc"
	"gitee.com/flycash/sms-unified/internal/domain"
	"gitee.com/flycash/sms-unified/internal/service/provider"
	"gitee.com/flycash/sms-unified/internal/service/unified"
	"github.com/ecodeclub/ekit/slice"
	"github.com/gotomicro/ego"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/core/elog"
)

func main() {
	if err := ego.New().Invoker(runDemo).Run(); err != nil {
		elog.Panic("startup", elog.Any("err", err))
	}
}

// runDemo 跑一遍完整流程：申请模板 -> 审批 -> 单发 -> 批量 -> 查询审计记录
func runDemo() error {
	ctx := context.Background()

	tool, err := unified.NewTool(newProvider())
	if err != nil {
		return err
	}

	template, err := tool.ApplyTemplate(ctx, domain.TemplateApplyRequest{
		TemplateName:    "登录验证码",
		TemplateContent: "您的验证码为${code}，5分钟内有效",
		Scene:           "LOGIN",
		Applicant:       "demo",
	})
	if err != nil {
		return err
	}
	if _, err = tool.ApproveTemplate(ctx, template.TemplateCode, true, ""); err != nil {
		return err
	}

	params := map[string]string{"code": "123456"}
	single, err := tool.SendTemplateSingle(ctx, template.TemplateCode, "13800138000", params, "演示签名", "aliyun")
	if err != nil {
		return err
	}
	elog.Info("单发完成",
		elog.String("requestID", single.RequestID),
		elog.String("providerCode", single.ProviderCode),
		elog.Any("success", single.Success))

	batch, err := tool.SendTemplateBatch(ctx, template.TemplateCode,
		[]string{"13800138000", "13900139000", "13800138000"}, params, "演示签名", "aliyun")
	if err != nil {
		return err
	}
	codes := slice.Map(batch.Results, func(_ int, src domain.SendResult) string {
		return src.ProviderCode
	})
	elog.Info("批量完成",
		elog.Any("total", batch.Total),
		elog.Any("success", batch.Success),
		elog.Any("failed", batch.Failed),
		elog.Any("providerCodes", codes))

	record, err := tool.QuerySendResult(ctx, single.RequestID)
	if err != nil {
		return err
	}
	elog.Info("审计记录",
		elog.String("requestID", record.RequestID),
		elog.String("templateName", record.TemplateName))
	return nil
}

// newProvider 配置了真实供应商时走短信SDK，否则用本地回显方便演示
func newProvider() provider.Provider {
	if econf.GetString("sms.provider") != "" {
		return ioc.InitSMSProvider()
	}
	return echoProvider{}
}

// echoProvider 本地回显实现，不依赖任何外部服务
type echoProvider struct{}

func (echoProvider) Send(_ context.Context, req domain.SendRequest) (domain.SendResult, error) {
	return domain.SendResult{
		Success:         true,
		ProviderCode:    "OK",
		ProviderMessage: "echo",
		Ext: map[string]any{
			"raw": fmt.Sprintf("phones=%v,template=%s,sign=%s", req.Phones, req.TemplateCode, req.SignName),
		},
	}, nil
}
