package util

import (
	"Glimpse/internal/api/dto"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

func init() {
	validate = validator.New()
}

func ValidateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			firstError := vErrs[0]
			msg := fmt.Sprintf("字段 [%s] 校验失败，规则 [%s]",
				firstError.Field(),
				firstError.Tag())
			return errors.New(msg)
		}
	}
	return nil
}

// ValidateRegisterDTO 用户名只允许字母数字下划线，邮箱和密码交给 validator 标签
func ValidateRegisterDTO(reg *dto.RegisterDTO) bool {
	if !usernameRegex.MatchString(reg.Username) {
		return false
	}
	return ValidateDTO(reg) == nil
}

func ValidateLoginDTO(cred *dto.CredentialDTO) bool {
	return cred.Email != "" && cred.Password != ""
}
