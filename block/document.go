package block

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// MaxInputSize 限制单个文档描述文件的大小（默认 4MB）。
var MaxInputSize = 4 << 20

// Document 是解码后的文档描述：可选的文档信息与顶层 Block 序列。
type Document struct {
	Info   map[string]any
	Blocks []*Block
	Dir    string
}

// Parse 解析 YAML（或 JSON，作为 YAML 的子集）编码的文档描述。
// 顶层既可以是 Block 序列，也可以是包含 info 与 content 的映射。
func Parse(r io.Reader, dir string) (*Document, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, int64(MaxInputSize)+1))
	if err != nil {
		return nil, fmt.Errorf("读取文档描述失败: %w", err)
	}
	if n > int64(MaxInputSize) {
		return nil, fmt.Errorf("文档描述超过 %d 字节上限", MaxInputSize)
	}
	var raw any
	if err := yaml.Unmarshal(buf.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("解析文档描述失败: %w", err)
	}
	return FromRaw(Normalize(raw), dir)
}

// ParseFile 读取并解析文档描述文件，Block 的 _path 默认为该文件所在目录。
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开文档描述 %s: %w", path, err)
	}
	defer file.Close()
	return Parse(file, filepath.Dir(path))
}

// FromRaw 将已归一化的通用结构转换为 Document。
func FromRaw(raw any, dir string) (*Document, error) {
	doc := &Document{Info: map[string]any{}, Dir: dir}
	switch v := raw.(type) {
	case nil:
		return doc, nil
	case []any:
		blocks, err := Decode(v, dir)
		if err != nil {
			return nil, err
		}
		doc.Blocks = blocks
	case map[string]any:
		if info, ok := v["info"].(map[string]any); ok {
			doc.Info = info
		} else if v["info"] != nil {
			return nil, fmt.Errorf("%w: info 必须是映射", ErrInvalidFormat)
		}
		blocks, err := Decode(v["content"], dir)
		if err != nil {
			return nil, err
		}
		doc.Blocks = blocks
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidFormat, raw)
	}
	return doc, nil
}
