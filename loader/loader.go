// Package loader 读取并反序列化资源文件。
//
// 支持 YAML、JSON、TOML，文件名以 .xz 结尾时先解压。解码结果按内容摘要缓存，
// 同一内容在一次构建中只解析一次。
package loader

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/ByLCY/quire/block"
)

// MaxFileSize 限制单个资源（解压后）的大小。
const MaxFileSize = 16 << 20

var (
	ErrUnsupportedFormat = errors.New("不支持的资源格式")
	ErrDecode            = errors.New("资源解码失败")
	ErrTooLarge          = errors.New("资源文件过大")
)

// Format 是资源文件的编码格式。
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Loader 负责资源文件的读取、解压、解码与缓存。零值不可用，请使用 New。
type Loader struct {
	logger *zap.Logger
	cache  map[string]any
	hits   int
	misses int
}

// Option 配置 Loader。
type Option func(*Loader)

// WithLogger 设置日志记录器。
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// New 创建 Loader。
func New(opts ...Option) *Loader {
	l := &Loader{
		logger: zap.NewNop(),
		cache:  make(map[string]any),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DetectFormat 根据文件名推断格式，compressed 表示带有 .xz 后缀。
func DetectFormat(name string) (format Format, compressed bool, err error) {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".xz") {
		compressed = true
		lower = strings.TrimSuffix(lower, ".xz")
	}
	switch filepath.Ext(lower) {
	case ".yaml", ".yml":
		return FormatYAML, compressed, nil
	case ".json":
		return FormatJSON, compressed, nil
	case ".toml":
		return FormatTOML, compressed, nil
	default:
		return "", compressed, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// Digest 返回内容的 BLAKE3 摘要（十六进制）。
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Load 读取 path 并返回解码后的通用数据。返回值是缓存的深拷贝，调用方可以随意修改。
func (l *Loader) Load(path string) (any, error) {
	format, compressed, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := readLimited(f, path)
	if err != nil {
		return nil, err
	}
	return l.decodeCached(path, raw, format, compressed)
}

// Decode 按 name 推断格式解码内存中的数据，同样参与缓存。
func (l *Loader) Decode(name string, raw []byte) (any, error) {
	format, compressed, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	return l.decodeCached(name, raw, format, compressed)
}

// Stats 返回缓存命中与未命中次数。
func (l *Loader) Stats() (hits, misses int) {
	return l.hits, l.misses
}

func (l *Loader) decodeCached(name string, raw []byte, format Format, compressed bool) (any, error) {
	key := string(format) + ":" + Digest(raw)
	if cached, ok := l.cache[key]; ok {
		l.hits++
		l.logger.Debug("资源缓存命中", zap.String("file", name), zap.String("key", key))
		return block.Clone(cached), nil
	}
	l.misses++

	data := raw
	if compressed {
		r, err := xz.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
		}
		if data, err = readLimited(r, name); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
		}
	}

	val, err := decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}
	val = block.Normalize(val)
	l.cache[key] = val
	l.logger.Debug("资源已解码",
		zap.String("file", name),
		zap.String("format", string(format)),
		zap.Bool("xz", compressed),
		zap.Int("bytes", len(data)),
	)
	return block.Clone(val), nil
}

func decode(format Format, data []byte) (any, error) {
	var out any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
	case FormatTOML:
		m := make(map[string]any)
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, err
		}
		out = m
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return out, nil
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, name)
	}
	return data, nil
}
