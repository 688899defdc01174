// Package validate 提供发送与模板操作前的纯参数校验。
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"gitee.com/flycash/sms-unified/internal/errs"
)

var phoneRegexp = regexp.MustCompile(`^1\d{10}$`)

// Phone 校验国内手机号：1开头，共11位数字
func Phone(phone string) error {
	if strings.TrimSpace(phone) == "" || !phoneRegexp.MatchString(phone) {
		return fmt.Errorf("%w: 手机号不合法: %s", errs.ErrInvalidParameter, phone)
	}
	return nil
}

// NotBlank 必填字段校验
func NotBlank(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s 不能为空", errs.ErrInvalidParameter, name)
	}
	return nil
}

// Phones 批量发送前的非空校验，逐个号码的格式校验在去重后进行
func Phones(phones []string) error {
	if len(phones) == 0 {
		return fmt.Errorf("%w: phones 不能为空", errs.ErrInvalidParameter)
	}
	return nil
}
