package config

import (
	"errors"
	"fmt"

	"github.com/andrewyi/domaincrawler/src/enum"
	"github.com/andrewyi/domaincrawler/src/util"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Log struct {
		Context bool   `mapstructure:"context"`
		Level   string `mapstructure:"level"`
		Format  string `mapstructure:"format"` // text/json
	} `mapstructure:"log"`

	Core struct {
		DomainQueueSize uint32 `mapstructure:"domain_queue_size"`
		RunTimeout      uint32 `mapstructure:"run_timeout"` // 秒，0表示不限制
	} `mapstructure:"core"`

	Database struct {
		Driver string `mapstructure:"driver"` // sqlite3/postgres
		URL    string `mapstructure:"url"`
	} `mapstructure:"database"`

	Frontier struct {
		BatchSize uint32 `mapstructure:"batch_size"`
	} `mapstructure:"frontier"`

	Storage struct {
		Location string `mapstructure:"location"`
	} `mapstructure:"storage"`

	Import struct {
		DomainURLColumn string `mapstructure:"domain_url_column"`
		NameColumn      string `mapstructure:"name_column"`
		CategoryColumn  string `mapstructure:"category_column"`
	} `mapstructure:"import"`

	Downloader struct {
		Timeout     uint32 `mapstructure:"timeout"`
		Retry       uint32 `mapstructure:"retry"`
		UserAgent   string `mapstructure:"user_agent"`
		MaxBodySize int64  `mapstructure:"max_body_size"`
	} `mapstructure:"downloader"`

	Controller struct {
		Worker          uint32 `mapstructure:"worker"`
		MaxPages        uint32 `mapstructure:"max_pages"`
		DomainTimeout   uint32 `mapstructure:"domain_timeout"`
		AllowSubdomains bool   `mapstructure:"allow_subdomains"`
	} `mapstructure:"controller"`
}

func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"log.context":                 false,
		"log.level":                   "info",
		"log.format":                  "text",
		"core.domain_queue_size":      enum.DefaultWorker,
		"core.run_timeout":            0,
		"database.driver":             "sqlite3",
		"database.url":                "./scraped_data.db",
		"frontier.batch_size":         enum.DefaultBatchSize,
		"storage.location":            "./export",
		"import.domain_url_column":    "website.url",
		"import.name_column":          "name",
		"import.category_column":      "mainBusinessLine.descriptions",
		"downloader.timeout":          enum.DefaultDownloadTimeout,
		"downloader.retry":            0,
		"downloader.user_agent":       enum.DefaultUserAgent,
		"downloader.max_body_size":    enum.DefaultMaxBodySize,
		"controller.worker":           enum.DefaultWorker,
		"controller.max_pages":        enum.DefaultMaxPages,
		"controller.domain_timeout":   enum.DefaultDomainTimeout,
		"controller.allow_subdomains": true,
	}
}

// 加载配置并校验，返回的错误都视为配置错误，直接终止运行
func Load(filePath string) (*Config, error) {
	var cfg = &Config{}
	if err := util.ReadConfig(filePath, Defaults(), cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("%w: unsupported database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("%w: database.url is empty", ErrInvalidConfig)
	}
	if c.Controller.Worker == 0 {
		return fmt.Errorf("%w: controller.worker must be positive", ErrInvalidConfig)
	}
	if c.Controller.MaxPages == 0 {
		return fmt.Errorf("%w: controller.max_pages must be positive", ErrInvalidConfig)
	}
	if c.Downloader.MaxBodySize <= 0 {
		return fmt.Errorf("%w: downloader.max_body_size must be positive", ErrInvalidConfig)
	}
	return nil
}
