package core

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

type HTTPConfig struct {
	Addr                   string `koanf:"addr" mapstructure:"addr"`
	ReadTimeoutSeconds     int    `koanf:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `koanf:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `koanf:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`
}

type WebhookConfig struct {
	Secret string `koanf:"secret" mapstructure:"secret"`
}

type IdentityConfig struct {
	CredentialsJSON string `koanf:"credentials_json" mapstructure:"credentials_json"`
}

type MailConfig struct {
	Host     string `koanf:"host" mapstructure:"host"`
	Port     int    `koanf:"port" mapstructure:"port"`
	Username string `koanf:"username" mapstructure:"username"`
	Password string `koanf:"password" mapstructure:"password"`
	FromName string `koanf:"from_name" mapstructure:"from_name"`
	LoginURL string `koanf:"login_url" mapstructure:"login_url"`
}

type UpstreamConfig struct {
	CallTimeoutSeconds int `koanf:"call_timeout_seconds" mapstructure:"call_timeout_seconds"`
}

type Config struct {
	ServiceName string         `koanf:"service_name" mapstructure:"service_name"`
	HTTP        HTTPConfig     `koanf:"http" mapstructure:"http"`
	Webhook     WebhookConfig  `koanf:"webhook" mapstructure:"webhook"`
	Identity    IdentityConfig `koanf:"identity" mapstructure:"identity"`
	Mail        MailConfig     `koanf:"mail" mapstructure:"mail"`
	Upstream    UpstreamConfig `koanf:"upstream" mapstructure:"upstream"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "cakto-bridge",
		HTTP: HTTPConfig{
			Addr:                   ":8080",
			ReadTimeoutSeconds:     5,
			WriteTimeoutSeconds:    30,
			ShutdownTimeoutSeconds: 10,
		},
		Mail: MailConfig{
			Host:     "smtp.gmail.com",
			Port:     587,
			FromName: "Painel - PrecisionX",
			LoginURL: "https://SEU-DOMINIO-DA-AREA.com/login",
		},
		Upstream: UpstreamConfig{
			CallTimeoutSeconds: 10,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("core: http.addr is required")
	}
	if strings.TrimSpace(c.Webhook.Secret) == "" {
		return fmt.Errorf("core: webhook.secret is required")
	}
	if strings.TrimSpace(c.Identity.CredentialsJSON) == "" {
		return fmt.Errorf("core: identity.credentials_json is required")
	}
	if strings.TrimSpace(c.Mail.Host) == "" {
		return fmt.Errorf("core: mail.host is required")
	}
	if c.Mail.Port <= 0 {
		return fmt.Errorf("core: mail.port must be positive")
	}
	if strings.TrimSpace(c.Mail.Username) == "" {
		return fmt.Errorf("core: mail.username is required")
	}
	if strings.TrimSpace(c.Mail.Password) == "" {
		return fmt.Errorf("core: mail.password is required")
	}
	if strings.TrimSpace(c.Mail.LoginURL) == "" {
		return fmt.Errorf("core: mail.login_url is required")
	}
	if c.Upstream.CallTimeoutSeconds <= 0 {
		return fmt.Errorf("core: upstream.call_timeout_seconds must be positive")
	}
	return nil
}

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// EnvRawConfigLoader maps the process environment onto the raw config shape.
// Variable names match the ones the existing deployment already sets.
type EnvRawConfigLoader struct {
	Lookup func(key string) (string, bool)
}

func (l EnvRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	raw := map[string]any{}
	setString := func(section, key, env string) {
		value, ok := lookup(env)
		if !ok || strings.TrimSpace(value) == "" {
			return
		}
		ensureSection(raw, section)[key] = value
	}

	if value, ok := lookup("SERVICE_NAME"); ok && strings.TrimSpace(value) != "" {
		raw["service_name"] = value
	}
	setString("http", "addr", "HTTP_ADDR")
	setString("webhook", "secret", "CAKTO_SECRET")
	setString("identity", "credentials_json", "FIREBASE_SERVICE_ACCOUNT_KEY")
	setString("mail", "host", "MAIL_HOST")
	setString("mail", "username", "MAIL_USER")
	setString("mail", "password", "MAIL_PASS")
	setString("mail", "from_name", "MAIL_FROM_NAME")
	setString("mail", "login_url", "LOGIN_URL")

	if value, ok := lookup("MAIL_PORT"); ok && strings.TrimSpace(value) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("core: parse MAIL_PORT: %w", err)
		}
		ensureSection(raw, "mail")["port"] = port
	}
	if value, ok := lookup("UPSTREAM_TIMEOUT_SECONDS"); ok && strings.TrimSpace(value) != "" {
		seconds, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("core: parse UPSTREAM_TIMEOUT_SECONDS: %w", err)
		}
		ensureSection(raw, "upstream")["call_timeout_seconds"] = seconds
	}
	return raw, nil
}

func ensureSection(raw map[string]any, name string) map[string]any {
	if section, ok := raw[name].(map[string]any); ok {
		return section
	}
	section := map[string]any{}
	raw[name] = section
	return section
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	setValue := func(section, key string, value any, zero bool) {
		if zero && !includeZero {
			return
		}
		ensureSection(layer, section)[key] = value
	}

	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	setValue("http", "addr", cfg.HTTP.Addr, strings.TrimSpace(cfg.HTTP.Addr) == "")
	setValue("http", "read_timeout_seconds", cfg.HTTP.ReadTimeoutSeconds, cfg.HTTP.ReadTimeoutSeconds == 0)
	setValue("http", "write_timeout_seconds", cfg.HTTP.WriteTimeoutSeconds, cfg.HTTP.WriteTimeoutSeconds == 0)
	setValue("http", "shutdown_timeout_seconds", cfg.HTTP.ShutdownTimeoutSeconds, cfg.HTTP.ShutdownTimeoutSeconds == 0)
	setValue("webhook", "secret", cfg.Webhook.Secret, strings.TrimSpace(cfg.Webhook.Secret) == "")
	setValue("identity", "credentials_json", cfg.Identity.CredentialsJSON, strings.TrimSpace(cfg.Identity.CredentialsJSON) == "")
	setValue("mail", "host", cfg.Mail.Host, strings.TrimSpace(cfg.Mail.Host) == "")
	setValue("mail", "port", cfg.Mail.Port, cfg.Mail.Port == 0)
	setValue("mail", "username", cfg.Mail.Username, strings.TrimSpace(cfg.Mail.Username) == "")
	setValue("mail", "password", cfg.Mail.Password, strings.TrimSpace(cfg.Mail.Password) == "")
	setValue("mail", "from_name", cfg.Mail.FromName, strings.TrimSpace(cfg.Mail.FromName) == "")
	setValue("mail", "login_url", cfg.Mail.LoginURL, strings.TrimSpace(cfg.Mail.LoginURL) == "")
	setValue("upstream", "call_timeout_seconds", cfg.Upstream.CallTimeoutSeconds, cfg.Upstream.CallTimeoutSeconds == 0)
	return layer
}
