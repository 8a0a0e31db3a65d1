package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/sesadapter/pkg/mailer/ses"
)

// Config holds adapter configuration.
// Embed this in your app config for env parsing with caarlos0/env, or load it
// from YAML with LoadConfig.
type Config struct {
	Templates       map[string]TemplateSpec     `yaml:"templates"`
	Callbacks       map[string]VariableCallback `yaml:"-"` // Resolves TemplateSpec.CallbackName
	FromAddress     string                      `yaml:"fromAddress" env:"SES_FROM_ADDRESS"`
	AccessKeyID     string                      `yaml:"accessKeyId" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string                      `yaml:"secretAccessKey" env:"AWS_SECRET_ACCESS_KEY"`
	Region          string                      `yaml:"region" env:"AWS_REGION"`

	SESEndpoint      string `yaml:"sesEndpoint" env:"SES_ENDPOINT"`               // Optional, for local SES emulators
	ConfigurationSet string `yaml:"configurationSet" env:"SES_CONFIGURATION_SET"` // Optional
}

// TemplateSpec configures a single template.
type TemplateSpec struct {
	Callback      VariableCallback `yaml:"-"`
	Subject       string           `yaml:"subject"`
	PathPlainText string           `yaml:"pathPlainText"`
	PathHTML      string           `yaml:"pathHtml"`     // Optional
	PathMarkdown  string           `yaml:"pathMarkdown"` // Optional, used when PathHTML is empty
	CallbackName  string           `yaml:"callback"`     // Key in Config.Callbacks
}

// validate checks the configuration in a fixed order and returns a private
// copy of the template map with callbacks resolved.
func (c Config) validate() (map[string]TemplateSpec, error) {
	if c.FromAddress == "" || c.AccessKeyID == "" || c.SecretAccessKey == "" || c.Region == "" {
		return nil, ErrMissingCredentials
	}

	templates := maps.Clone(c.Templates)
	if templates == nil {
		templates = make(map[string]TemplateSpec)
	}

	for _, key := range reservedTemplates {
		spec, ok := templates[key]
		if !ok || spec.Subject == "" || spec.PathPlainText == "" {
			return nil, ErrTemplatesNotConfigured
		}

		if spec.Callback == nil && spec.CallbackName != "" {
			fn, ok := c.Callbacks[spec.CallbackName]
			if !ok || fn == nil {
				return nil, ErrCallbackNotFunc
			}
			spec.Callback = fn
			templates[key] = spec
		}
	}

	return templates, nil
}

// LoadConfig reads a YAML config file. ${VAR} references in string values are
// expanded from the environment after decoding, so secrets can stay out of the file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfigFile, path, err)
	}
	return ParseConfig(bytes.NewReader(data))
}

// ParseConfig decodes a YAML config. It does not validate; New does.
// Only the ${VAR} form is expanded; a bare $ is kept as written.
func ParseConfig(r io.Reader) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}

	cfg.expandEnv()
	return cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

func (c *Config) expandEnv() {
	for _, field := range []*string{
		&c.FromAddress, &c.AccessKeyID, &c.SecretAccessKey, &c.Region,
		&c.SESEndpoint, &c.ConfigurationSet,
	} {
		*field = expandEnv(*field)
	}

	for name, spec := range c.Templates {
		spec.Subject = expandEnv(spec.Subject)
		spec.PathPlainText = expandEnv(spec.PathPlainText)
		spec.PathHTML = expandEnv(spec.PathHTML)
		spec.PathMarkdown = expandEnv(spec.PathMarkdown)
		spec.CallbackName = expandEnv(spec.CallbackName)
		c.Templates[name] = spec
	}
}

// sesConfig is the provider configuration New builds the default sender from.
func (c Config) sesConfig() ses.Config {
	return ses.Config{
		AccessKeyID:      c.AccessKeyID,
		SecretAccessKey:  c.SecretAccessKey,
		Region:           c.Region,
		Endpoint:         c.SESEndpoint,
		ConfigurationSet: c.ConfigurationSet,
	}
}
