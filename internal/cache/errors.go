package cache

// Escalate 标记一个需要透传给调用方的 Loader 错误。未经标记的错误会被缓存
// 吸收为 absent 条目；被标记的错误原样返回，且不会写入任何条目。
func Escalate(err error) error {
	if err == nil {
		return nil
	}
	return &escalatedError{err: err}
}

type escalatedError struct {
	err error
}

func (e *escalatedError) Error() string {
	return e.err.Error()
}

func (e *escalatedError) Unwrap() error {
	return e.err
}
