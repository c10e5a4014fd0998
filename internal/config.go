package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quire/internal/collection"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig           `yaml:"app"`
	Content     ContentConfig               `yaml:"content"`
	Catalog     CatalogConfig               `yaml:"catalog"`
	Collections map[string]CollectionConfig `yaml:"collections"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	for name, cc := range c.Collections {
		if _, err := collection.Parse(name); err != nil {
			return fmt.Errorf("collections: %w", err)
		}
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("collections.%s: %w", name, err)
		}
	}
	_, err := c.Layout()
	return err
}

// Layout builds the collection layout with the configured directory overrides.
func (c *Config) Layout() (*collection.Layout, error) {
	overrides := make(map[string]string, len(c.Collections))
	for name, cc := range c.Collections {
		overrides[name] = cc.Dir
	}
	return collection.NewLayout(overrides)
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In(slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError)),
	)
}

// ContentConfig holds the path to the site's content root.
type ContentConfig struct {
	Root string `yaml:"root"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// CatalogConfig holds SQLite catalog configuration.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required, validation.By(notDir)),
	)
}

func notDir(value any) error {
	p, _ := value.(string)
	if p != "" && (p[len(p)-1] == '/' || filepath.Base(p) == ".") {
		return fmt.Errorf("must name a file, not a directory")
	}
	return nil
}

// CollectionConfig overrides where a collection lives under the content root.
type CollectionConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the collection configuration.
func (c *CollectionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
		},
		Content: ContentConfig{
			Root: "./src/content",
		},
		Catalog: CatalogConfig{
			Path: "./.quire/catalog.db",
		},
	}
}
