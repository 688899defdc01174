package sender

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gitee.com/flycash/sms-unified/internal/domain"
	"gitee.com/flycash/sms-unified/internal/errs"
	"gitee.com/flycash/sms-unified/internal/repository"
	providermocks "gitee.com/flycash/sms-unified/internal/service/provider/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

func TestSenderSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(SenderTestSuite))
}

type SenderTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *providermocks.MockProvider
	templateRepo repository.TemplateRepository
	auditRepo    repository.SendAuditRepository
	svc          Service
}

func (s *SenderTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockProvider = providermocks.NewMockProvider(s.ctrl)
	s.templateRepo = repository.NewMemoryTemplateRepository()
	s.auditRepo = repository.NewMemorySendAuditRepository()

	svc, err := NewService(s.mockProvider, s.templateRepo, s.auditRepo)
	require.NoError(s.T(), err)
	s.svc = svc
}

func (s *SenderTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

// seedTemplate 预置一个指定状态的模板
func (s *SenderTestSuite) seedTemplate(status domain.TemplateStatus) domain.Template {
	return s.seedTemplateWithCode("TPL1001", status)
}

func (s *SenderTestSuite) seedTemplateWithCode(code string, status domain.TemplateStatus) domain.Template {
	now := time.Now()
	template, err := s.templateRepo.Create(context.Background(), domain.Template{
		TemplateCode:    code,
		TemplateName:    "登录验证码",
		TemplateContent: "您的验证码为${code}，5分钟内有效",
		Scene:           "LOGIN",
		Status:          status,
		CreatedBy:       "tester",
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.NoError(s.T(), err)
	return template
}

func (s *SenderTestSuite) TestNewService_NilProvider() {
	_, err := NewService(nil, s.templateRepo, s.auditRepo)
	assert.ErrorIs(s.T(), err, errs.ErrInvalidParameter)
}

func (s *SenderTestSuite) TestSendTemplateSingle_Success() {
	t := s.T()
	s.seedTemplate(domain.TemplateStatusEnabled)

	s.mockProvider.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.SendRequest) (domain.SendResult, error) {
			assert.Equal(t, "TPL1001", req.TemplateCode)
			assert.Equal(t, []string{"13800138000"}, req.Phones)
			assert.Equal(t, map[string]string{"code": "123456"}, req.TemplateParams)
			assert.Equal(t, "演示签名", req.SignName)
			assert.Equal(t, "aliyun", req.Channel)
			return domain.SendResult{
				Success:         true,
				ProviderCode:    "OK",
				ProviderMessage: "发送成功",
			}, nil
		})

	result, err := s.svc.SendTemplateSingle(context.Background(), "TPL1001", "13800138000",
		map[string]string{"code": "123456"}, "演示签名", "aliyun")
	require.NoError(t, err)

	assert.NotEmpty(t, result.RequestID)
	assert.True(t, result.Success)
	assert.Equal(t, "TPL1001", result.TemplateCode)
	assert.Equal(t, "登录验证码", result.TemplateName)
	assert.Equal(t, 1, result.PhoneCount)
	assert.False(t, result.SendTime.IsZero())

	// 审计记录与返回结果一致
	record, err := s.svc.QuerySendResult(context.Background(), result.RequestID)
	require.NoError(t, err)
	assert.Equal(t, result, record)
}

func (s *SenderTestSuite) TestSendTemplateSingle_NilParamsBecomeEmptyMap() {
	t := s.T()
	s.seedTemplate(domain.TemplateStatusEnabled)

	s.mockProvider.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.SendRequest) (domain.SendResult, error) {
			assert.NotNil(t, req.TemplateParams)
			assert.Empty(t, req.TemplateParams)
			return domain.SendResult{Success: true, ProviderCode: "OK"}, nil
		})

	_, err := s.svc.SendTemplateSingle(context.Background(), "TPL1001", "13800138000", nil, "演示签名", "aliyun")
	require.NoError(t, err)
}

func (s *SenderTestSuite) TestSendTemplateSingle_InvalidParameters() {
	s.seedTemplate(domain.TemplateStatusEnabled)

	testCases := []struct {
		name     string
		phone    string
		signName string
		channel  string
	}{
		{name: "手机号不合法", phone: "2380013800", signName: "演示签名", channel: "aliyun"},
		{name: "签名为空", phone: "13800138000", signName: "", channel: "aliyun"},
		{name: "渠道为空", phone: "13800138000", signName: "演示签名", channel: ""},
	}

	for i := range testCases {
		s.T().Run(testCases[i].name, func(t *testing.T) {
			// 参数校验失败，不会触达供应商
			_, err := s.svc.SendTemplateSingle(context.Background(), "TPL1001",
				testCases[i].phone, nil, testCases[i].signName, testCases[i].channel)
			assert.ErrorIs(t, err, errs.ErrInvalidParameter)
		})
	}
}

func (s *SenderTestSuite) TestSendTemplateSingle_TemplateNotSendable() {
	t := s.T()

	notSendable := []domain.TemplateStatus{
		domain.TemplateStatusPendingApproval,
		domain.TemplateStatusDisabled,
		domain.TemplateStatusRejected,
		domain.TemplateStatusDeleted,
	}
	for i, status := range notSendable {
		code := fmt.Sprintf("TPL%d", 2000+i)
		s.seedTemplateWithCode(code, status)

		// 状态校验在供应商调用之前，mock未设置期望即可验证无调用
		_, err := s.svc.SendTemplateSingle(context.Background(), code, "13800138000", nil, "演示签名", "aliyun")
		assert.ErrorIs(t, err, errs.ErrInvalidStatus, "status=%s", status)
	}
}

func (s *SenderTestSuite) TestSendTemplateSingle_TemplateNotFound() {
	t := s.T()

	_, err := s.svc.SendTemplateSingle(context.Background(), "TPL4044", "13800138000", nil, "演示签名", "aliyun")
	assert.ErrorIs(t, err, errs.ErrTemplateNotFound)

	_, err = s.svc.SendTemplateSingle(context.Background(), "", "13800138000", nil, "演示签名", "aliyun")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func (s *SenderTestSuite) TestSendTemplateSingle_ProviderError() {
	t := s.T()
	s.seedTemplate(domain.TemplateStatusEnabled)

	s.mockProvider.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return(domain.SendResult{}, errors.New("网络超时"))

	// 单发路径供应商失败直接报错，不产生审计记录
	_, err := s.svc.SendTemplateSingle(context.Background(), "TPL1001", "13800138000", nil, "演示签名", "aliyun")
	assert.ErrorIs(t, err, errs.ErrSendSMSFailed)
	assert.ErrorContains(t, err, "网络超时")
}

func (s *SenderTestSuite) TestSendTemplateBatch_DeduplicatesPreservingOrder() {
	t := s.T()
	s.seedTemplate(domain.TemplateStatusEnabled)

	var sent []string
	s.mockProvider.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.SendRequest) (domain.SendResult, error) {
			require.Len(t, req.Phones, 1)
			sent = append(sent, req.Phones[0])
			return domain.SendResult{Success: true, ProviderCode: "OK"}, nil
		}).Times(2)

	batch, err := s.svc.SendTemplateBatch(context.Background(), "TPL1001",
		[]string{"13800138000", "13900139000", "13800138000"}, nil, "演示签名", "aliyun")
	require.NoError(t, err)

	assert.Equal(t, []string{"13800138000", "13900139000"}, sent)
	assert.Equal(t, 2, batch.Total)
	assert.Equal(t, 2, batch.Success)
	assert.Equal(t, 0, batch.Failed)
	assert.Len(t, batch.Results, 2)
}

func (s *SenderTestSuite) TestSendTemplateBatch_FailureIsolation() {
	t := s.T()
	s.seedTemplate(domain.TemplateStatusEnabled)

	phones := []string{"13800138000", "13900139000", "13700137000"}
	s.mockProvider.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.SendRequest) (domain.SendResult, error) {
			if req.Phones[0] == "13900139000" {
				return domain.SendResult{}, errors.New("供应商限流")
			}
			return domain.SendResult{Success: true, ProviderCode: "OK"}, nil
		}).Times(3)

	batch, err := s.svc.SendTemplateBatch(context.Background(), "TPL1001", phones, nil, "演示签名", "aliyun")
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 2, batch.Success)
	assert.Equal(t, 1, batch.Failed)
	require.Len(t, batch.Results, 3)

	// 结果顺序与去重后的手机号一致，失败项转成记录
	failed := batch.Results[1]
	assert.False(t, failed.Success)
	assert.Equal(t, "INVOKER_EXCEPTION", failed.ProviderCode)
	assert.Contains(t, failed.ProviderMessage, "供应商限流")

	// 每个号码一条审计记录，失败的也在
	for i := range batch.Results {
		record, err1 := s.svc.QuerySendResult(context.Background(), batch.Results[i].RequestID)
		require.NoError(t, err1)
		assert.Equal(t, batch.Results[i], record)
		assert.Equal(t, 1, record.PhoneCount)
	}
}

func (s *SenderTestSuite) TestSendTemplateBatch_EmptyPhones() {
	t := s.T()
	s.seedTemplate(domain.TemplateStatusEnabled)

	_, err := s.svc.SendTemplateBatch(context.Background(), "TPL1001", nil, nil, "演示签名", "aliyun")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func (s *SenderTestSuite) TestSendTemplateBatch_InvalidPhoneRejectsWholeBatch() {
	t := s.T()
	s.seedTemplate(domain.TemplateStatusEnabled)

	// 任一号码不合法则整批拒绝，且不触达供应商
	_, err := s.svc.SendTemplateBatch(context.Background(), "TPL1001",
		[]string{"13800138000", "bad-phone"}, nil, "演示签名", "aliyun")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func (s *SenderTestSuite) TestSendTemplateBatch_TemplateNotSendable() {
	t := s.T()
	s.seedTemplate(domain.TemplateStatusDisabled)

	_, err := s.svc.SendTemplateBatch(context.Background(), "TPL1001",
		[]string{"13800138000"}, nil, "演示签名", "aliyun")
	assert.ErrorIs(t, err, errs.ErrInvalidStatus)
}

func (s *SenderTestSuite) TestEnrich_DuplicateRequestIDFromProvider() {
	t := s.T()
	s.seedTemplate(domain.TemplateStatusEnabled)

	// 供应商两次返回同一个requestID
	s.mockProvider.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return(domain.SendResult{Success: true, ProviderCode: "OK", RequestID: "dup-1"}, nil).
		Times(2)

	first, err := s.svc.SendTemplateSingle(context.Background(), "TPL1001", "13800138000", nil, "演示签名", "aliyun")
	require.NoError(t, err)
	assert.Equal(t, "dup-1", first.RequestID)

	second, err := s.svc.SendTemplateSingle(context.Background(), "TPL1001", "13900139000", nil, "演示签名", "aliyun")
	require.NoError(t, err)
	// 重复ID被替换，旧记录不被覆盖
	assert.NotEqual(t, "dup-1", second.RequestID)
	assert.NotEmpty(t, second.RequestID)

	record, err := s.svc.QuerySendResult(context.Background(), "dup-1")
	require.NoError(t, err)
	assert.Equal(t, first, record)
}

func (s *SenderTestSuite) TestQuerySendResult() {
	t := s.T()
	s.seedTemplate(domain.TemplateStatusEnabled)

	s.mockProvider.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return(domain.SendResult{Success: true, ProviderCode: "OK", Ext: map[string]any{"provider": "aliyun"}}, nil)

	result, err := s.svc.SendTemplateSingle(context.Background(), "TPL1001", "13800138000", nil, "演示签名", "aliyun")
	require.NoError(t, err)

	record, err := s.svc.QuerySendResult(context.Background(), result.RequestID)
	require.NoError(t, err)
	assert.Equal(t, result, record)

	// 返回的是独立副本，修改后不影响后续查询
	record.Ext["provider"] = "hacked"
	again, err := s.svc.QuerySendResult(context.Background(), result.RequestID)
	require.NoError(t, err)
	assert.Equal(t, "aliyun", again.Ext["provider"])
}

func (s *SenderTestSuite) TestQuerySendResult_NotFound() {
	t := s.T()

	_, err := s.svc.QuerySendResult(context.Background(), "unknown-request-id")
	assert.ErrorIs(t, err, errs.ErrSendRecordNotFound)

	_, err = s.svc.QuerySendResult(context.Background(), " ")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}
