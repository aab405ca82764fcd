package engine

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownBlockType   = errors.New("未注册的 block 类型")
	ErrUnresolvedResource = errors.New("无法解析的资源别名")
	ErrInvalidSelector    = errors.New("无效的选择表达式")
	ErrUnknownStyle       = errors.New("未定义的样式")
	ErrDuplicatePlugin    = errors.New("插件名称重复")
	ErrMissingField       = errors.New("缺少必需字段")
	ErrInvalidResource    = errors.New("无效的资源")
)

// Phase 标识构建阶段。
type Phase string

const (
	PhaseInit    Phase = "init"
	PhasePrepare Phase = "prepare"
	PhaseProcess Phase = "process"
)

// BlockError 记录出错 block 的阶段、类型与来源目录。
// 嵌套 block 出错时只包装一次，保留最内层的 block 信息。
type BlockError struct {
	Phase Phase
	Type  string
	Path  string
	Err   error
}

func (e *BlockError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s 阶段 block %q（%s）: %v", e.Phase, e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s 阶段 block %q: %v", e.Phase, e.Type, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// wrapBlockError 为 err 附加 block 信息；已经包含 BlockError 的错误原样返回。
func wrapBlockError(phase Phase, typ, path string, err error) error {
	if err == nil {
		return nil
	}
	var be *BlockError
	if errors.As(err, &be) {
		return err
	}
	return &BlockError{Phase: phase, Type: typ, Path: path, Err: err}
}

// MissingField 构造 ErrMissingField 错误。
func MissingField(blockType, field string) error {
	return fmt.Errorf("%w: %s.%s", ErrMissingField, blockType, field)
}
