// Package config 加载命令行使用的构建配置（quire.yaml + QUIRE_* 环境变量）。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/style"
)

// EnvPrefix 是环境变量前缀，例如 QUIRE_LOG_LEVEL、QUIRE_PAGE_SIZE。
const EnvPrefix = "QUIRE"

// Config 是一次构建的外部配置。
type Config struct {
	Page          PageConfig `mapstructure:"page"`
	LogLevel      string     `mapstructure:"log_level"`
	DebugJSON     string     `mapstructure:"debug_json"`
	DebugRawUnits bool       `mapstructure:"debug_raw_units"`
	FallbackFont  string     `mapstructure:"fallback_font"`
	StylesFile    string     `mapstructure:"styles_file"`
	Meta          MetaConfig `mapstructure:"meta"`

	// 以下字段从配置文件原样解码，保留键的大小写。
	Fonts  map[string]FontConfig `mapstructure:"-"`
	Info   map[string]any        `mapstructure:"-"`
	Styles style.Raw             `mapstructure:"-"`

	file string
}

// PageConfig 描述纸张与边距。
type PageConfig struct {
	Size        string `mapstructure:"size"`
	Orientation string `mapstructure:"orientation"`
	Margin      string `mapstructure:"margin"`
}

// MetaConfig 是 PDF 元信息的默认值，文档 info 中的同名键优先。
type MetaConfig struct {
	Author  string `mapstructure:"author"`
	Creator string `mapstructure:"creator"`
}

// FontConfig 覆盖或新增一个字体定义。
type FontConfig struct {
	Src    string `yaml:"src"`
	Style  string `yaml:"style"`
	Family string `yaml:"family"`
}

// fileExtras 是 viper 会改写键大小写的那部分配置。
type fileExtras struct {
	Fonts     map[string]FontConfig `yaml:"fonts"`
	Info      map[string]any        `yaml:"info"`
	style.Raw `yaml:",inline"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("page.size", "A4")
	v.SetDefault("page.orientation", "portrait")
	v.SetDefault("page.margin", "20mm")
	v.SetDefault("log_level", "info")
	v.SetDefault("debug_json", "")
	v.SetDefault("debug_raw_units", false)
	v.SetDefault("fallback_font", "embed:regular")
	v.SetDefault("styles_file", "")
	v.SetDefault("meta.author", "")
	v.SetDefault("meta.creator", "quire")
}

// Load 读取配置。path 为空时依次在当前目录与用户主目录查找 quire.yaml，找不到则使用默认值；
// 显式指定的文件不存在时返回错误。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("quire")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.file = v.ConfigFileUsed()
	if err := cfg.loadExtras(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadExtras() error {
	if c.file == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(c.file)) {
	case ".yaml", ".yml":
	default:
		return nil
	}
	data, err := os.ReadFile(c.file)
	if err != nil {
		return fmt.Errorf("读取配置文件 %s 失败: %w", c.file, err)
	}
	var extras fileExtras
	if err := yaml.Unmarshal(data, &extras); err != nil {
		return fmt.Errorf("解析配置文件 %s 失败: %w", c.file, err)
	}
	c.Fonts = extras.Fonts
	if info, ok := block.Normalize(extras.Info).(map[string]any); ok {
		c.Info = info
	}
	c.Styles = extras.Raw
	return nil
}

// File 返回实际使用的配置文件路径，未使用配置文件时为空。
func (c *Config) File() string { return c.file }

// StyleSheet 依次叠加内置样式表、styles_file 与配置文件中的内联样式。
// styles_file 的相对路径以配置文件所在目录为基准。
func (c *Config) StyleSheet() (*style.Sheet, error) {
	sheet := style.Default()
	if c.StylesFile != "" {
		path := c.StylesFile
		if !filepath.IsAbs(path) && c.file != "" {
			path = filepath.Join(filepath.Dir(c.file), path)
		}
		loaded, err := style.Load(path)
		if err != nil {
			return nil, err
		}
		sheet = loaded
	}
	if len(c.Styles.Styles) == 0 && len(c.Styles.Params) == 0 {
		return sheet, nil
	}
	return sheet.With(c.Styles)
}
