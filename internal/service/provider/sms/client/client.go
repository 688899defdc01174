package client

import "errors"

// OK 供应商返回的成功状态码统一值
const OK = "OK"

var (
	ErrInvalidParameter = errors.New("参数错误")
	ErrSendFailed       = errors.New("发送失败")
)

// Client 短信供应商客户端抽象
type Client interface {
	// Send 发送短信
	Send(req SendReq) (SendResp, error)
}

type SendReq struct {
	PhoneNumbers  []string
	SignName      string
	TemplateID    string
	TemplateParam map[string]string
}

type SendRespStatus struct {
	Code    string
	Message string
}

type SendResp struct {
	RequestID string
	// PhoneNumbers 每个手机号的发送状态
	PhoneNumbers map[string]SendRespStatus
}
