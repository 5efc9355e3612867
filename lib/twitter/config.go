package twitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/kc1awv/Plugin-Collections/lib/database/config"
	"github.com/kc1awv/Plugin-Collections/lib/paramstore"
)

// Config is the plugin-twitter config file structure.
type Config struct {
	ConsumerKey       string `yaml:"consumer_key"`
	ConsumerSecret    string `yaml:"consumer_secret"`
	AccessToken       string `yaml:"access_token"`
	AccessTokenSecret string `yaml:"access_token_secret"`
	AccountLabel      string `yaml:"account_label"`
	// SSMPrefix, when set, names an SSM Parameter Store path holding any secret left empty above.
	SSMPrefix string `yaml:"ssm_prefix"`
}

func DefaultConfig() Config {
	return Config{AccountLabel: DefaultAccountLabel}
}

// Environment variables that override the file.
const (
	EnvConsumerKey       = "TWITTER_CONSUMER_KEY"
	EnvConsumerSecret    = "TWITTER_CONSUMER_SECRET"
	EnvAccessToken       = "TWITTER_ACCESS_TOKEN"
	EnvAccessTokenSecret = "TWITTER_ACCESS_TOKEN_SECRET"
)

func (c *Config) secrets() []struct {
	name string
	env  string
	dst  *string
} {
	return []struct {
		name string
		env  string
		dst  *string
	}{
		{"consumer_key", EnvConsumerKey, &c.ConsumerKey},
		{"consumer_secret", EnvConsumerSecret, &c.ConsumerSecret},
		{"access_token", EnvAccessToken, &c.AccessToken},
		{"access_token_secret", EnvAccessTokenSecret, &c.AccessTokenSecret},
	}
}

// ApplyEnv overwrites secrets with any non-empty environment value.
func (c *Config) ApplyEnv(getenv func(string) string) {
	for _, s := range c.secrets() {
		if v := strings.TrimSpace(getenv(s.env)); v != "" {
			*s.dst = v
		}
	}
}

// ResolveSecrets fills still-empty secrets from Parameter Store under SSMPrefix.
func (c *Config) ResolveSecrets(ctx context.Context, g paramstore.Getter) error {
	if strings.TrimSpace(c.SSMPrefix) == "" {
		return nil
	}
	for _, s := range c.secrets() {
		if *s.dst != "" {
			continue
		}
		v, err := g.GetParameter(ctx, paramstore.Join(c.SSMPrefix, s.name))
		if err != nil {
			return fmt.Errorf("twitter: resolve %s: %w", s.name, err)
		}
		*s.dst = strings.TrimSpace(v)
	}
	return nil
}

func (c Config) needsSSM() bool {
	if strings.TrimSpace(c.SSMPrefix) == "" {
		return false
	}
	return c.ConsumerKey == "" || c.ConsumerSecret == "" || c.AccessToken == "" || c.AccessTokenSecret == ""
}

func (c Config) Credentials() Credentials {
	return Credentials{
		ConsumerKey:       c.ConsumerKey,
		ConsumerSecret:    c.ConsumerSecret,
		AccessToken:       c.AccessToken,
		AccessTokenSecret: c.AccessTokenSecret,
	}
}

// GetterFactory opens a Parameter Store client only when one is needed.
type GetterFactory func(ctx context.Context) (paramstore.Getter, error)

// DefaultGetterFactory uses the default AWS credential chain.
func DefaultGetterFactory(ctx context.Context) (paramstore.Getter, error) {
	c, err := paramstore.NewFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfig reads dataDir/config/<plugin>/config.yaml (writing a template if absent), applies the
// environment, then resolves remaining secrets from Parameter Store when ssm_prefix is set.
func LoadConfig(ctx context.Context, dataDir, plugin string, getenv func(string) string, newGetter GetterFactory) (Config, error) {
	cfg := DefaultConfig()
	if err := config.LoadOrInit(dataDir, plugin, &cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(getenv)
	if !cfg.needsSSM() {
		return cfg, nil
	}
	g, err := newGetter(ctx)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ResolveSecrets(ctx, g); err != nil {
		return cfg, err
	}
	return cfg, nil
}
