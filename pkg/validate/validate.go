// Package validate 课表字段的自定义校验规则（hhmm、weekday、dayname），
// 同时注册到独立的 validator 实例与 gin 的绑定引擎。
package validate

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"routine-hub/backend/internal/schedule"
)

// New 创建已注册自定义规则的校验器
func New() *validator.Validate {
	v := validator.New()
	register(v)
	return v
}

// RegisterGin 将自定义规则注册到 gin 默认绑定引擎，供 binding 标签使用
func RegisterGin() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}

func register(v *validator.Validate) {
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseClock(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return schedule.Day(fl.Field().String()).Valid()
	})
	// dayname 宽松匹配：大小写、缩写（sat、thurs）均可
	_ = v.RegisterValidation("dayname", func(fl validator.FieldLevel) bool {
		_, ok := schedule.ParseDay(fl.Field().String())
		return ok
	})
}

// FieldErrors 将校验错误展开为 字段 → 规则，用于响应 details
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.Namespace()] = fe.Tag()
		}
	}
	return out
}
