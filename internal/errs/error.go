package errs

import (
	"errors"
)

// 定义统一的错误类型
var (
	ErrInvalidParameter = errors.New("参数错误")
	ErrInvalidStatus    = errors.New("模板状态不允许该操作")

	ErrTemplateNotFound   = errors.New("模板不存在")
	ErrSendRecordNotFound = errors.New("发送记录不存在")

	ErrSendSMSFailed       = errors.New("短信发送失败")
	ErrSendRecordDuplicate = errors.New("发送记录主键冲突")
	ErrTemplateDuplicate   = errors.New("模板编码冲突")

	ErrTemplateCodeGenerateFailed = errors.New("模板编码生成失败")
)
