package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Content    ContentConfig    `yaml:"content"`
	Tags       TagsConfig       `yaml:"tags"`
	Output     OutputConfig     `yaml:"output"`
	Source     *SourceConfig    `yaml:"source,omitempty"`
	Categories []CategoryConfig `yaml:"categories"`
}

// SiteConfig carries site-wide presentation metadata.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Author      string `yaml:"author,omitempty"`
}

// ContentConfig locates the content tree on disk.
type ContentConfig struct {
	Dir string `yaml:"dir"`
}

// CategoryConfig declares one content category: a directory of markdown
// entries merged into the shared route space under an optional path prefix.
type CategoryConfig struct {
	Name       string `yaml:"name"`
	Dir        string `yaml:"dir,omitempty"`         // relative to content.dir, defaults to name
	PathPrefix string `yaml:"path_prefix,omitempty"` // e.g. "code" -> /code/{slug}/
}

// TagMode selects where the set of tag listing pages comes from.
type TagMode string

const (
	// TagModeDerived builds the tag set from the union of entry tags.
	TagModeDerived TagMode = "derived"
	// TagModeDeclared uses the configured list; entry tags outside it are a
	// build error, declared tags with no entries still get a listing page.
	TagModeDeclared TagMode = "declared"
)

// TagsConfig selects declared vs derived tag listings.
type TagsConfig struct {
	Mode     TagMode  `yaml:"mode,omitempty"`
	Declared []string `yaml:"declared,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
	CacheFile string `yaml:"cache_file,omitempty"`
}

// SourceConfig optionally points at a remote Git repository holding the
// content tree. When set, the build clones it and discovers content there
// instead of content.dir.
type SourceConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
	Token  string `yaml:"token,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load the first .env file that parses so env expansion below sees it.
	// Existing process environment is never overridden by godotenv.Load.
	for _, envPath := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			break
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Site.Title == "" {
		config.Site.Title = "Personal Blog"
	}
	if config.Content.Dir == "" {
		config.Content.Dir = "./content"
	}
	if config.Output.Directory == "" {
		config.Output.Directory = "./public"
	}
	if config.Output.CacheFile == "" {
		config.Output.CacheFile = ".blogbuilder-cache.db"
	}
	if config.Tags.Mode == "" {
		config.Tags.Mode = TagModeDerived
	}
	if len(config.Categories) == 0 {
		config.Categories = []CategoryConfig{{Name: "blog"}}
	}
	for i := range config.Categories {
		if config.Categories[i].Dir == "" {
			config.Categories[i].Dir = config.Categories[i].Name
		}
	}
	if config.Source != nil && config.Source.Branch == "" {
		config.Source.Branch = "main"
	}
}

// Validate rejects configurations the build cannot act on.
func (c *Config) Validate() error {
	switch c.Tags.Mode {
	case TagModeDerived, TagModeDeclared:
	default:
		return fmt.Errorf("invalid tags.mode %q (expected %q or %q)", c.Tags.Mode, TagModeDerived, TagModeDeclared)
	}
	if c.Tags.Mode == TagModeDeclared && len(c.Tags.Declared) == 0 {
		return fmt.Errorf("tags.mode is %q but tags.declared is empty", TagModeDeclared)
	}
	seen := make(map[string]string, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if prev, dup := seen[cat.Name]; dup {
			return fmt.Errorf("duplicate category name %q (dirs %q and %q)", cat.Name, prev, cat.Dir)
		}
		seen[cat.Name] = cat.Dir
	}
	if c.Source != nil && c.Source.URL == "" {
		return fmt.Errorf("source is set but source.url is empty")
	}
	return nil
}
