package config

// FieldError 指出校验失败的配置项，Field 形如 Global.ListenPort 或 Provider[apps].Root。
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func newFieldError(field, reason string) error {
	return FieldError{Field: field, Reason: reason}
}

// providerField 拼接 Provider 级字段路径；名称为空时输出 Provider[].Field。
func providerField(name, field string) string {
	return "Provider[" + name + "]." + field
}
