package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"table-profiler/internal/adapter"
	"table-profiler/internal/config"
	"table-profiler/internal/profiler"
	"table-profiler/internal/renderer"
	"table-profiler/internal/splitter"
	"table-profiler/internal/table"
)

var (
	configPath string
	sourceType string
	sourcePath string
	connStr    string
	schema     string
	tableName  string
	limit      int
	indexCol   bool
	clean      bool
	format     string
	outputDir  string
	rows       int
	column     string
	sep        string
	keep       bool
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dfinfo",
		Short:         "表格数据列分析工具",
		Long:          "读取 CSV 或数据库表，输出逐列统计（类型、内存、空值、基数、最值、众数），或按分隔符将列拆分为多行",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML 配置文件")
	rootCmd.PersistentFlags().StringVar(&sourceType, "type", "csv", "数据来源 (csv/mysql/sqlserver)")
	rootCmd.PersistentFlags().StringVar(&sourcePath, "path", "", "CSV 文件路径（- 表示标准输入）")
	rootCmd.PersistentFlags().StringVar(&connStr, "conn", "", "数据库连接字符串")
	rootCmd.PersistentFlags().StringVar(&schema, "schema", "", "数据库 schema (MySQL 必需)")
	rootCmd.PersistentFlags().StringVar(&tableName, "table", "", "表名")
	rootCmd.PersistentFlags().IntVar(&limit, "limit", 0, "最多读取行数，0 表示不限")
	rootCmd.PersistentFlags().BoolVar(&indexCol, "index-col", false, "CSV 首列为行索引")
	rootCmd.PersistentFlags().StringVar(&format, "format", "markdown", "输出格式 (markdown/json/table)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "", "输出目录，为空时输出到标准输出")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "日志级别")

	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "逐列统计",
		RunE:  runProfile,
	}
	profileCmd.Flags().BoolVar(&clean, "clean", false, "分析前清洗：去除首尾空白，空串视为缺失")

	splitCmd := &cobra.Command{
		Use:   "split",
		Short: "按分隔符将列的值拆分为多行",
		RunE:  runSplit,
	}
	splitCmd.Flags().StringVar(&column, "column", "", "要拆分的列")
	splitCmd.Flags().StringVar(&sep, "sep", splitter.DefaultSep, "分隔符")
	splitCmd.Flags().BoolVar(&keep, "keep", false, "保留拆分前的原值作为单独一行")
	splitCmd.Flags().IntVar(&rows, "rows", 50, "表格输出的最大行数，0 表示全部")
	splitCmd.MarkFlagRequired("column")

	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "列出数据库中的表",
		RunE:  runTables,
	}

	rootCmd.AddCommand(profileCmd, splitCmd, tablesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig 读取配置文件并用命令行参数覆盖
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	override := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	override("type", func() { cfg.Source.Type = sourceType })
	override("path", func() { cfg.Source.Path = sourcePath })
	override("conn", func() { cfg.Source.Conn = connStr })
	override("schema", func() { cfg.Source.Schema = schema })
	override("table", func() { cfg.Source.Table = tableName })
	override("limit", func() { cfg.Source.Limit = limit })
	override("index-col", func() { cfg.Source.IndexCol = indexCol })
	override("format", func() { cfg.Output.Format = format })
	override("output", func() { cfg.Output.Dir = outputDir })
	override("log-level", func() { cfg.Log.Level = logLevel })
	override("clean", func() { cfg.Profile.Clean = clean })
	override("sep", func() { cfg.Split.Sep = sep })
	override("keep", func() { cfg.Split.Keep = keep })
	override("rows", func() { cfg.Output.Rows = rows })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup 加载配置并创建日志
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

// loadSource 按配置读取输入表，返回表和用于输出的名称
func loadSource(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*table.Table, string, error) {
	src := cfg.Source
	switch src.Type {
	case "csv":
		if src.Path == "" {
			return nil, "", errors.New("csv source requires --path")
		}
		opts := adapter.CSVOptions{IndexCol: src.IndexCol, Limit: src.Limit}
		if src.Delimiter != "" {
			opts.Delimiter = []rune(src.Delimiter)[0]
		}

		in := os.Stdin
		name := "stdin"
		if src.Path != "-" {
			f, err := os.Open(src.Path)
			if err != nil {
				return nil, "", errors.Wrap(err, "open csv")
			}
			defer f.Close()
			in = f
			name = filepath.Base(src.Path)
		}

		t, err := adapter.ReadCSV(in, opts)
		if err != nil {
			return nil, "", errors.Wrapf(err, "read %s", name)
		}
		logger.Info().Str("source", name).Int("rows", t.NumRows()).Int("columns", len(t.Columns())).Msg("csv loaded")
		return t, name, nil
	}

	if src.Table == "" {
		return nil, "", errors.New("database source requires --table")
	}
	db, err := adapter.NewAdapter(src.Type, src.Conn, src.Schema)
	if err != nil {
		return nil, "", errors.Wrap(err, "connect")
	}
	defer db.Close()

	t, err := db.LoadTable(ctx, src.Table, src.Limit)
	if err != nil {
		return nil, "", errors.Wrapf(err, "load %s", src.Table)
	}
	logger.Info().Str("source", src.Table).Int("rows", t.NumRows()).Int("columns", len(t.Columns())).Msg("table loaded")
	return t, src.Table, nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	t, name, err := loadSource(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	summary, err := profiler.NewProfiler(logger).Profile(t, cfg.Profile.Clean)
	if err != nil {
		return err
	}

	var out []byte
	switch cfg.Output.Format {
	case "json":
		out, err = summary.ToJSON()
	case "table":
		var s string
		s, err = renderer.NewTerminalRenderer().RenderSummary(summary)
		out = []byte(s)
	default:
		out = []byte(renderer.NewMarkdownRenderer().RenderSummary(name, summary))
	}
	if err != nil {
		return err
	}
	return write(cfg, logger, name+".info", out)
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	t, name, err := loadSource(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	split, err := splitter.SplitRows(t, column, splitter.Options{Sep: cfg.Split.Sep, Keep: cfg.Split.Keep})
	if err != nil {
		return err
	}
	logger.Info().Str("column", column).Int("rows_in", t.NumRows()).Int("rows_out", split.NumRows()).Msg("split completed")

	var out []byte
	switch cfg.Output.Format {
	case "json":
		out, err = renderer.TableJSON(split)
	case "table":
		var s string
		s, err = renderer.NewTerminalRenderer().RenderTable(split, cfg.Output.Rows)
		out = []byte(s)
	default:
		out = []byte(renderer.NewMarkdownRenderer().RenderTable(name+" / "+column, split, cfg.Output.Rows))
	}
	if err != nil {
		return err
	}
	return write(cfg, logger, name+".split", out)
}

func runTables(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if cfg.Source.Type == "csv" {
		return errors.New("tables requires a database source (--type mysql/sqlserver)")
	}

	db, err := adapter.NewAdapter(cfg.Source.Type, cfg.Source.Conn, cfg.Source.Schema)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer db.Close()

	ctx := cmd.Context()
	meta, err := db.IntrospectSchema(ctx)
	if err != nil {
		return errors.Wrap(err, "introspect schema")
	}

	for _, t := range meta.Tables {
		count, err := db.EstimateRowCount(ctx, t.Name)
		if err != nil {
			logger.Warn().Err(err).Str("table", t.Name).Msg("estimate row count failed")
		}
		fmt.Printf("%s.%s\t%d rows\t%d columns\n", t.Schema, t.Name, count, len(t.Columns))
		for _, c := range t.Columns {
			fmt.Printf("  %s\t%s\t%s\n", c.Name, c.DataType, c.Kind())
		}
	}
	return nil
}

// write 输出到标准输出或输出目录
func write(cfg *config.Config, logger zerolog.Logger, base string, data []byte) error {
	if cfg.Output.Dir == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	ext := map[string]string{"json": ".json", "table": ".txt"}[cfg.Output.Format]
	if ext == "" {
		ext = ".md"
	}
	path := filepath.Join(cfg.Output.Dir, base+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "write output")
	}
	logger.Info().Str("path", path).Msg("output written")
	return nil
}
