package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/config"
	"github.com/ByLCY/quire/engine"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/loader"
	"github.com/ByLCY/quire/logger"
	"github.com/ByLCY/quire/plugins"
	"github.com/ByLCY/quire/renderer"
	canvasrenderer "github.com/ByLCY/quire/renderer/canvas"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type cliOptions struct {
	configPath string
	logLevel   string
	output     string
	debugJSON  string
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:          "quire",
		Short:        "quire 将 block 文档描述构建为 PDF",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "配置文件路径（默认查找 ./quire.yaml 与 ~/quire.yaml）")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "日志级别：debug/info/warn/error")
	root.AddCommand(newBuildCommand(opts), newPluginsCommand())
	return root
}

func newBuildCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <input>",
		Short: "构建文档并输出 PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			if opts.debugJSON != "" {
				cfg.DebugJSON = opts.debugJSON
			}
			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			input := args[0]
			output := opts.output
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
			}
			r := canvasrenderer.NewRenderer(filepath.Dir(input))
			out, err := run(input, output, cfg, log, r)
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), out.Warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "已生成 PDF：%s（%s）\n", output, out.Summary())
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "PDF 输出路径（默认与输入同名）")
	cmd.Flags().StringVar(&opts.debugJSON, "debug-json", "", "布局调试 JSON 输出路径")
	return cmd
}

func newPluginsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "列出已注册的 block 类型",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := plugins.Default()
			if err != nil {
				return err
			}
			for _, name := range reg.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// run 串联解析、构建、布局与渲染。
func run(inputPath, outputPath string, cfg *config.Config, log *zap.Logger, r renderer.Renderer) (*engine.Output, error) {
	if r == nil {
		return nil, fmt.Errorf("renderer 不能为空")
	}
	ts, ok := r.(layout.Typesetter)
	if !ok {
		return nil, fmt.Errorf("renderer 未实现排版接口")
	}

	doc, err := block.ParseFile(inputPath)
	if err != nil {
		return nil, err
	}
	sheet, err := cfg.StyleSheet()
	if err != nil {
		return nil, err
	}
	reg, err := plugins.Default()
	if err != nil {
		return nil, err
	}
	eng := engine.New(reg,
		engine.WithStyleSheet(sheet),
		engine.WithLogger(log),
		engine.WithLoader(loader.New(loader.WithLogger(log))),
		engine.WithInfo(cfg.Info),
	)
	out, err := eng.Build(doc)
	if err != nil {
		return nil, fmt.Errorf("构建文档失败: %w", err)
	}

	result, err := layout.Build(out.Elements, layout.BuildOptions{
		Typesetter: ts,
		Page: layout.PageOptions{
			Size:        cfg.Page.Size,
			Orientation: cfg.Page.Orientation,
			Margin:      cfg.Page.Margin,
		},
		Fonts:        layoutFonts(cfg),
		Meta:         documentMeta(out, cfg),
		BlockSpacing: sheet.Param("blockSpacing", ""),
		ListIndent:   sheet.Param("listIndent", ""),
		Debug:        layout.DebugOptions{RawUnits: cfg.DebugRawUnits},
	})
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}
	log.Debug("布局完成", zap.Int("pages", len(result.Pages)), zap.Int("bookmarks", len(result.Bookmarks)))

	if cfg.DebugJSON != "" {
		if err := writeDebug(result, cfg.DebugJSON); err != nil {
			return nil, err
		}
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return nil, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return nil, fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return out, nil
}

// layoutFonts 在内置字体之上叠加配置中的字体，fallback_font 用于 src 为空的条目。
func layoutFonts(cfg *config.Config) map[string]layout.FontResource {
	fonts := layout.DefaultFonts()
	for name, fc := range cfg.Fonts {
		font := fonts[name]
		font.Name = name
		if fc.Src != "" {
			font.Src = fc.Src
		}
		if font.Src == "" {
			font.Src = cfg.FallbackFont
		}
		if fc.Style != "" {
			font.Style = fc.Style
		}
		if fc.Family != "" {
			font.Family = fc.Family
		}
		fonts[name] = font
	}
	return fonts
}

func documentMeta(out *engine.Output, cfg *config.Config) layout.DocumentMeta {
	meta := layout.DocumentMeta{
		Title:   infoString(out.Info, "title"),
		Author:  infoString(out.Info, "author"),
		Subject: infoString(out.Info, "subject"),
		Creator: cfg.Meta.Creator,
		BuildID: out.BuildID,
	}
	if meta.Author == "" {
		meta.Author = cfg.Meta.Author
	}
	switch kw := out.Info["keywords"].(type) {
	case string:
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				meta.Keywords = append(meta.Keywords, k)
			}
		}
	case []any:
		for _, k := range kw {
			meta.Keywords = append(meta.Keywords, fmt.Sprint(k))
		}
	}
	return meta
}

func infoString(info map[string]any, key string) string {
	if v, ok := info[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func printWarnings(w io.Writer, warnings []engine.Warning) {
	if len(warnings) == 0 {
		return
	}
	warn := color.New(color.FgYellow, color.Bold)
	for _, item := range warnings {
		warn.Fprint(w, "警告 ")
		fmt.Fprintln(w, item.String())
	}
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
