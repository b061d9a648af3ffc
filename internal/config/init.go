package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# blogbuilder configuration
site:
  title: "My Blog"
  description: "Notes on software and everything else"
  base_url: "https://example.com"
  author: "Jane Doe"

content:
  dir: ./content

categories:
  - name: blog
  - name: code
    path_prefix: code

# Tag listing pages. mode: derived builds the set from entry tags;
# mode: declared pins it (entry tags outside the list fail the build).
tags:
  mode: derived
  # declared:
  #   - go
  #   - rust

output:
  directory: ./public
  clean: true

# Uncomment to build from a remote content repository instead of content.dir.
# source:
#   url: https://git.example.com/jane/blog-content.git
#   branch: main
#   token: ${CONTENT_REPO_TOKEN}
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	// #nosec G306 -- configuration template contains no secrets
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
