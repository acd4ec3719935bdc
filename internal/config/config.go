package config

import (
	"os"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

// Config 配置
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Source  SourceConfig  `yaml:"source"`
	Profile ProfileConfig `yaml:"profile"`
	Split   SplitConfig   `yaml:"split"`
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" 或 "console"
}

// SourceConfig 数据来源
type SourceConfig struct {
	Type      string `yaml:"type"`      // csv/mysql/sqlserver
	Path      string `yaml:"path"`      // CSV 文件路径
	Conn      string `yaml:"conn"`      // 连接字符串
	Schema    string `yaml:"schema"`    // MySQL 必需
	Table     string `yaml:"table"`     // 表名
	Limit     int    `yaml:"limit"`     // 最多读取行数，0 表示不限
	Delimiter string `yaml:"delimiter"` // CSV 分隔符
	IndexCol  bool   `yaml:"index_col"` // CSV 首列是否为行索引
}

// ProfileConfig 分析选项
type ProfileConfig struct {
	Clean bool `yaml:"clean"`
}

// SplitConfig 拆分选项
type SplitConfig struct {
	Sep  string `yaml:"sep"`
	Keep bool   `yaml:"keep"`
}

// OutputConfig 输出选项
type OutputConfig struct {
	Format string `yaml:"format"` // markdown/json/table
	Dir    string `yaml:"dir"`    // 为空时输出到标准输出
	Rows   int    `yaml:"rows"`   // 表格输出的最大行数
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Source: SourceConfig{
			Type:      "csv",
			Delimiter: ",",
		},
		Split: SplitConfig{
			Sep: "|",
		},
		Output: OutputConfig{
			Format: "markdown",
			Rows:   50,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load 从文件加载配置，未设置的字段使用默认值
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Source.Type {
	case "csv", "mysql", "sqlserver":
	default:
		return errors.Errorf("unsupported source type %q", c.Source.Type)
	}
	if c.Source.Type == "mysql" && c.Source.Conn != "" && c.Source.Schema == "" {
		return errors.New("mysql source requires schema")
	}
	switch c.Output.Format {
	case "markdown", "json", "table":
	default:
		return errors.Errorf("unsupported output format %q", c.Output.Format)
	}
	if c.Split.Sep == "" {
		return errors.New("split separator must not be empty")
	}
	if c.Source.Limit < 0 {
		return errors.New("source limit must not be negative")
	}
	return nil
}
