// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/shadowrail/shadowrail/internal/config"
)

var (
	initForce       bool
	initInteractive bool
	initTitle       string
	initVersion     string
	initDescription string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new shadowrail configuration file",
	Long: `Initialize a new shadowrail configuration file in the current directory.

This command creates a shadowrail.yaml file with sensible defaults that
you can customize for your Rails application.

Features:
  - Infers API title from config/application.rb's module name
  - Detects the Rails app root (a directory containing config/routes.rb)
  - Sets up Rails-appropriate exclude patterns (vendor, spec, tmp, log...)

Example:
  shadowrail init                         # Auto-detect and create config
  shadowrail init --force                 # Overwrite existing config
  shadowrail init --interactive           # Interactive mode with prompts
  shadowrail init --title "My API"        # Set custom API title`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "interactive mode with prompts")
	initCmd.Flags().StringVar(&initTitle, "title", "", "API title for OpenAPI info")
	initCmd.Flags().StringVar(&initVersion, "version", "", "API version for OpenAPI info")
	initCmd.Flags().StringVar(&initDescription, "description", "", "API description for OpenAPI info")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := "shadowrail.yaml"

	if _, err := os.Stat(configFile); err == nil && !initForce {
		return fmt.Errorf("config file %s already exists, use --force to overwrite", configFile)
	}

	projectRoot, err := filepath.Abs(".")
	if err != nil {
		return fmt.Errorf("failed to determine project root: %w", err)
	}

	cfg := config.Default()

	if !isRailsRoot(projectRoot) {
		printInfo("Warning: no config/routes.rb found in %s", projectRoot)
		printInfo("shadowrail expects path arguments or source.paths to point at a Rails app root")
	}

	app := detectApplicationInfo(projectRoot)

	if initTitle != "" {
		cfg.OpenAPI.Info.Title = initTitle
	} else if app.Title != "" {
		cfg.OpenAPI.Info.Title = app.Title
	}

	if initVersion != "" {
		cfg.OpenAPI.Info.Version = initVersion
	}

	if initDescription != "" {
		cfg.OpenAPI.Info.Description = initDescription
	}

	if initInteractive && isTerminal() {
		cfg, err = interactiveInit(cfg)
		if err != nil {
			return fmt.Errorf("interactive init failed: %w", err)
		}
	}

	out := buildConfigYAML(cfg)

	if err := os.WriteFile(configFile, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	printInfo("Created %s", configFile)
	printVerbose("Output: %s", cfg.Output)
	printVerbose("Paths: %s", strings.Join(cfg.Source.Paths, ", "))

	return nil
}

// applicationInfo holds information detected from a Rails application.
type applicationInfo struct {
	Title string
}

// detectApplicationInfo reads config/application.rb and pulls a title out
// of its `module Name` declaration, e.g. `module BlogApi` -> "Blog Api API".
func detectApplicationInfo(projectRoot string) applicationInfo {
	info := applicationInfo{}

	appPath := filepath.Join(projectRoot, "config", "application.rb")
	file, err := os.Open(appPath)
	if err != nil {
		return info
	}
	defer file.Close()

	titleCaser := cases.Title(language.English)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		name = camelToWords(name)
		info.Title = titleCaser.String(name) + " API"
		break
	}

	return info
}

// camelToWords inserts spaces at CamelCase boundaries, e.g. "BlogApi" ->
// "Blog Api".
func camelToWords(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// isRailsRoot reports whether dir looks like a Rails application root.
func isRailsRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "config", "routes.rb"))
	return err == nil
}

// isTerminal checks if stdin is a terminal.
func isTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// interactiveInit prompts the user for configuration options.
func interactiveInit(cfg *config.Config) (*config.Config, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("API Title [%s]: ", cfg.OpenAPI.Info.Title)
	title, _ := reader.ReadString('\n')
	title = strings.TrimSpace(title)
	if title != "" {
		cfg.OpenAPI.Info.Title = title
	}

	fmt.Printf("API Version [%s]: ", cfg.OpenAPI.Info.Version)
	version, _ := reader.ReadString('\n')
	version = strings.TrimSpace(version)
	if version != "" {
		cfg.OpenAPI.Info.Version = version
	}

	fmt.Printf("API Description [%s]: ", cfg.OpenAPI.Info.Description)
	description, _ := reader.ReadString('\n')
	description = strings.TrimSpace(description)
	if description != "" {
		cfg.OpenAPI.Info.Description = description
	}

	fmt.Printf("Output file [%s]: ", cfg.Output)
	out, _ := reader.ReadString('\n')
	out = strings.TrimSpace(out)
	if out != "" {
		cfg.Output = out
	}

	fmt.Printf("Output format (yaml/json) [%s]: ", cfg.Format)
	outFormat, _ := reader.ReadString('\n')
	outFormat = strings.TrimSpace(outFormat)
	if outFormat != "" {
		cfg.Format = outFormat
	}

	return cfg, nil
}

// buildConfigYAML builds a YAML config with a helpful header comment.
func buildConfigYAML(cfg *config.Config) string {
	data, _ := yaml.Marshal(cfg)

	header := `# shadowrail configuration file
# https://github.com/shadowrail/shadowrail

`
	return header + string(data)
}
