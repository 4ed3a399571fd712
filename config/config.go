package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/prebid/aolhtb/errortypes"
	"github.com/spf13/viper"
)

// Configuration specifies the static application config.
type Configuration struct {
	ExternalURL string `mapstructure:"external_url"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	AdminPort   int    `mapstructure:"admin_port"`
	EnableGzip  bool   `mapstructure:"enable_gzip"`
	// Protocol prefixes every generated bid request URL. Leave it empty for protocol-relative URLs.
	Protocol string `mapstructure:"protocol"`
	// Namespace is the wrapper namespace used to build the response callback path.
	Namespace      string `mapstructure:"namespace"`
	BidderInfoPath string `mapstructure:"bidder_info_path"`
	StatusResponse string `mapstructure:"status_response"`

	Partner   Partner   `mapstructure:"partner"`
	Metrics   Metrics   `mapstructure:"metrics"`
	Analytics Analytics `mapstructure:"analytics"`
	Transport Transport `mapstructure:"transport"`
	Render    Render    `mapstructure:"render"`
}

type Metrics struct {
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
	GoMetrics  GoMetrics         `mapstructure:"go_metrics"`
}

type PrometheusMetrics struct {
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Subsystem        string `mapstructure:"subsystem"`
	TimeoutMillisRaw int    `mapstructure:"timeout_ms"`
}

func (cfg *PrometheusMetrics) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillisRaw) * time.Millisecond
}

type GoMetrics struct {
	Enabled bool `mapstructure:"enabled"`
}

type Analytics struct {
	File FileLogs `mapstructure:"file"`
}

// FileLogs configures the file analytics module. It is disabled when Filename is empty.
type FileLogs struct {
	Filename string `mapstructure:"filename"`
}

type Transport struct {
	TimeoutMillis          int     `mapstructure:"timeout_ms"`
	MaxIdleConns           int     `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost    int     `mapstructure:"max_idle_conns_per_host"`
	IdleConnTimeoutSeconds int     `mapstructure:"idle_conn_timeout_seconds"`
	Breaker                Breaker `mapstructure:"breaker"`
}

func (cfg *Transport) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillis) * time.Millisecond
}

// Breaker trips after MaxFailures consecutive transport failures and stays open for OpenSeconds.
type Breaker struct {
	Enabled     bool   `mapstructure:"enabled"`
	MaxFailures uint32 `mapstructure:"max_failures"`
	OpenSeconds int    `mapstructure:"open_seconds"`
}

type Render struct {
	CleanupIntervalSeconds int `mapstructure:"cleanup_interval_seconds"`
}

func (cfg *Render) CleanupInterval() time.Duration {
	return time.Duration(cfg.CleanupIntervalSeconds) * time.Second
}

func (cfg *Configuration) validate() []error {
	var errs []error

	switch cfg.Protocol {
	case "", "http:", "https:":
	default:
		errs = append(errs, fmt.Errorf("protocol must be empty, \"http:\" or \"https:\", got %q", cfg.Protocol))
	}
	if cfg.Namespace == "" {
		errs = append(errs, errors.New("namespace must not be empty"))
	}
	if cfg.Transport.TimeoutMillis <= 0 {
		errs = append(errs, fmt.Errorf("transport.timeout_ms must be positive, got %d", cfg.Transport.TimeoutMillis))
	}
	if cfg.Transport.Breaker.Enabled && cfg.Transport.Breaker.MaxFailures == 0 {
		errs = append(errs, errors.New("transport.breaker.max_failures must be positive when the breaker is enabled"))
	}
	if cfg.Metrics.Prometheus.Port != 0 && cfg.Metrics.Prometheus.Port == cfg.Port {
		errs = append(errs, fmt.Errorf("metrics.prometheus.port %d collides with port", cfg.Metrics.Prometheus.Port))
	}

	return cfg.Partner.validate(errs)
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	glog.Info("Logging the resolved configuration:")
	logGeneral(v, "  \t")

	errs := c.validate()
	for _, warning := range errortypes.WarningOnly(errs) {
		glog.Warningf("Ignoring configuration value: %v", warning)
	}
	if fatal := errortypes.FatalOnly(errs); len(fatal) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", fatal)
	}

	return &c, nil
}

func logGeneral(v *viper.Viper, prefix string) {
	for _, key := range []string{"host", "port", "admin_port", "protocol", "namespace", "partner.region", "partner.network_id", "partner.line_item_type"} {
		glog.Infof("%s%s: %v", prefix, key, v.Get(key))
	}
}

// SetupViper sets the default values and the environment binding for every key.
// The config file is optional.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("external_url", "http://localhost:8000")
	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("admin_port", 6060)
	v.SetDefault("enable_gzip", false)
	v.SetDefault("protocol", "https:")
	v.SetDefault("namespace", "headertag")
	v.SetDefault("bidder_info_path", "static/bidder-info")
	v.SetDefault("status_response", "")

	v.SetDefault("partner.line_item_type", "")
	v.SetDefault("partner.demand_expiry.enabled", false)
	v.SetDefault("partner.demand_expiry.ttl_ms", 0)
	v.SetDefault("partner.capabilities.gpt_line_items", true)
	v.SetDefault("partner.capabilities.return_creative", false)
	v.SetDefault("partner.capabilities.return_price", false)
	v.SetDefault("partner.capabilities.internal_render", false)
	v.SetDefault("partner.rate_limiting.enabled", false)
	v.SetDefault("partner.rate_limiting.requests_per_second", 0)
	v.SetDefault("partner.rate_limiting.burst", 1)

	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.namespace", "")
	v.SetDefault("metrics.prometheus.subsystem", "")
	v.SetDefault("metrics.prometheus.timeout_ms", 10000)
	v.SetDefault("metrics.go_metrics.enabled", true)

	v.SetDefault("analytics.file.filename", "")

	v.SetDefault("transport.timeout_ms", 800)
	v.SetDefault("transport.max_idle_conns", 100)
	v.SetDefault("transport.max_idle_conns_per_host", 20)
	v.SetDefault("transport.idle_conn_timeout_seconds", 60)
	v.SetDefault("transport.breaker.enabled", true)
	v.SetDefault("transport.breaker.max_failures", 5)
	v.SetDefault("transport.breaker.open_seconds", 30)

	v.SetDefault("render.cleanup_interval_seconds", 60)

	v.SetEnvPrefix("AOLHTB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		if err := v.ReadInConfig(); err != nil {
			glog.Warningf("Could not read config file %s, using defaults and environment: %v", filename, err)
		}
	}
}
