// internal/config/config.go
//
// This package handles configuration and the .sigillum directory structure.
// Every site root gets a .sigillum/ folder holding config.yaml and the logs.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// StateDir is the name of the directory we create in each site root
	StateDir = ".sigillum"

	defaultLogo = "/images/favicon.ico"
)

const defaultProjectConfigYAML = `# sigillum site configuration
version: 1

site:
  domain: https://remusao.github.io/
  title: Simplex Sigillum Veri
  # description defaults to the title when empty
  description: ""

# Issues of this repository hold the comments of each post (metadata "issue: N").
# Leaving the section out keeps these values; set "disabled: true" to build
# without comments.
github:
  owner: remusao
  repo: remusao.github.io

paths:
  posts: posts/*.md
  output: _site
  styles:
    - styles/article.css
    - styles/code.css
    - styles/comments.css
    - styles/fonts.css
    - styles/sharing.css
    - styles/style.css
  assets:
    - images
    - fonts
    - snippets
    - experiments

# Post metadata "logo: <name>" resolves through this table.
logos:
  default: /images/favicon.ico
  named:
    adblock: /images/logos/cliqz.svg
    aws: /images/logos/aws.svg
    ccc: /images/logos/ccc.svg
    cliqz: /images/logos/cliqz.svg
    cpp: /images/logos/c++.svg
    hashcode: /images/logos/bash.svg
    haskell: /images/logos/haskell.svg
    html5: /images/logos/html-5.svg
    julia: /images/logos/julia.svg
    learning: /images/logos/learning.svg
    linux: /images/logos/linux-tux.svg
    ocaml: /images/logos/apache-camel.svg
    pi: /images/logos/pi.svg
    python: /images/logos/python.svg
    raspberry: /images/logos/raspberry-pi.svg
    synacor: /images/logos/synacor.svg
    typescript: /images/logos/typescript-icon.svg
    v8: /images/logos/v8.svg
    xmonad: /images/logos/xmonad.svg

server:
  host: 127.0.0.1
  port: 8080
`

// SiteConfig holds what ends up in page headers and share links.
type SiteConfig struct {
	Domain      string `yaml:"domain"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// GitHubConfig points at the repository whose issues carry post comments.
type GitHubConfig struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
	// APIURL overrides the GitHub API endpoint (enterprise installs, tests).
	APIURL string `yaml:"api_url,omitempty"`
	// Disabled turns comment fetching off.
	Disabled bool `yaml:"disabled,omitempty"`
}

// PathsConfig lists inputs and outputs relative to the site root.
type PathsConfig struct {
	Posts  string   `yaml:"posts"`
	Output string   `yaml:"output"`
	Styles []string `yaml:"styles"`
	Assets []string `yaml:"assets"`
}

// LogoConfig maps post "logo" metadata to image URLs.
type LogoConfig struct {
	Default string            `yaml:"default"`
	Named   map[string]string `yaml:"named"`
}

// ServerConfig configures the local preview server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ProjectConfig models .sigillum/config.yaml.
type ProjectConfig struct {
	Version int          `yaml:"version"`
	Site    SiteConfig   `yaml:"site"`
	GitHub  GitHubConfig `yaml:"github"`
	Paths   PathsConfig  `yaml:"paths"`
	Logos   LogoConfig   `yaml:"logos"`
	Server  ServerConfig `yaml:"server"`
}

// Config holds the runtime configuration for one site root.
type Config struct {
	// RootDir is the directory holding posts/, styles/ and the asset folders
	RootDir string

	// StateDir is RootDir/.sigillum
	StateDir string

	// GitHubToken authenticates comment fetching; read from GITHUB_TOKEN.
	GitHubToken string

	Project ProjectConfig
}

// InitDir creates the .sigillum directory structure in the given site root
// and writes the default config.yaml when none exists yet.
//
// Structure created:
// .sigillum/
// ├── config.yaml
// └── logs/       <- sigillum.log and builds.log
func InitDir(rootDir string) error {
	stateDir := filepath.Join(rootDir, StateDir)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0o755); err != nil {
		return fmt.Errorf("config: ensure state dir: %w", err)
	}
	return ensureProjectConfig(filepath.Join(stateDir, "config.yaml"))
}

// Load builds a Config for rootDir, reading .sigillum/config.yaml when present.
func Load(rootDir string) (*Config, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve root: %w", err)
	}
	project, err := defaultProjectConfig()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		RootDir:     abs,
		StateDir:    filepath.Join(abs, StateDir),
		GitHubToken: strings.TrimSpace(os.Getenv("GITHUB_TOKEN")),
		Project:     project,
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// BuildLogPath returns the logbook file recording build history
func (c *Config) BuildLogPath() string {
	return filepath.Join(c.LogsDir(), "builds.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// OutputDir returns the absolute directory the site is generated into.
func (c *Config) OutputDir() string {
	return c.Project.Paths.Output
}

// PostsGlob returns the absolute glob matching post sources.
func (c *Config) PostsGlob() string {
	return c.Project.Paths.Posts
}

// StylePaths returns the absolute stylesheet paths in bundle order.
func (c *Config) StylePaths() []string {
	return append([]string(nil), c.Project.Paths.Styles...)
}

// AssetDirs returns the asset directory names copied verbatim into the output.
func (c *Config) AssetDirs() []string {
	return append([]string(nil), c.Project.Paths.Assets...)
}

// Logo implements post.LogoResolver: unknown or empty names fall back to the
// default logo.
func (c *Config) Logo(name string) string {
	if name != "" {
		if logo, ok := c.Project.Logos.Named[strings.ToLower(strings.TrimSpace(name))]; ok && logo != "" {
			return logo
		}
	}
	return c.Project.Logos.Default
}

// CommentsEnabled reports whether a repository is configured for comments.
func (c *Config) CommentsEnabled() bool {
	gh := c.Project.GitHub
	return !gh.Disabled && gh.Owner != "" && gh.Repo != ""
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Project.normalize(c.RootDir)
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults(c.Project)
	parsed.normalize(c.RootDir)
	if err := parsed.validate(c.RootDir, c.StateDir); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() (ProjectConfig, error) {
	var pc ProjectConfig
	if err := yaml.Unmarshal([]byte(defaultProjectConfigYAML), &pc); err != nil {
		return ProjectConfig{}, fmt.Errorf("config: parse defaults: %w", err)
	}
	return pc, nil
}

// applyDefaults fills sections left empty in the file from the defaults.
func (pc *ProjectConfig) applyDefaults(def ProjectConfig) {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Site.Domain == "" {
		pc.Site.Domain = def.Site.Domain
	}
	if pc.Site.Title == "" {
		pc.Site.Title = def.Site.Title
	}
	if pc.GitHub.Owner == "" && pc.GitHub.Repo == "" && !pc.GitHub.Disabled {
		pc.GitHub.Owner = def.GitHub.Owner
		pc.GitHub.Repo = def.GitHub.Repo
	}
	if pc.Paths.Posts == "" {
		pc.Paths.Posts = def.Paths.Posts
	}
	if pc.Paths.Output == "" {
		pc.Paths.Output = def.Paths.Output
	}
	if pc.Paths.Styles == nil {
		pc.Paths.Styles = append([]string(nil), def.Paths.Styles...)
	}
	if pc.Paths.Assets == nil {
		pc.Paths.Assets = append([]string(nil), def.Paths.Assets...)
	}
	if pc.Logos.Default == "" {
		pc.Logos.Default = def.Logos.Default
	}
	if pc.Logos.Named == nil {
		pc.Logos.Named = make(map[string]string, len(def.Logos.Named))
		for k, v := range def.Logos.Named {
			pc.Logos.Named[k] = v
		}
	}
	if pc.Server.Host == "" {
		pc.Server.Host = def.Server.Host
	}
	if pc.Server.Port == 0 {
		pc.Server.Port = def.Server.Port
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Site.Domain = strings.TrimSpace(pc.Site.Domain)
	if pc.Site.Domain != "" && !strings.HasSuffix(pc.Site.Domain, "/") {
		pc.Site.Domain += "/"
	}
	pc.Site.Title = strings.TrimSpace(pc.Site.Title)
	pc.Site.Description = strings.TrimSpace(pc.Site.Description)
	if pc.Site.Description == "" {
		pc.Site.Description = pc.Site.Title
	}
	pc.GitHub.Owner = strings.TrimSpace(pc.GitHub.Owner)
	pc.GitHub.Repo = strings.TrimSpace(pc.GitHub.Repo)
	pc.GitHub.APIURL = strings.TrimSpace(pc.GitHub.APIURL)

	pc.Paths.Posts = resolvePath(base, pc.Paths.Posts)
	pc.Paths.Output = resolvePath(base, pc.Paths.Output)
	for i := range pc.Paths.Styles {
		pc.Paths.Styles[i] = resolvePath(base, pc.Paths.Styles[i])
	}
	assets := pc.Paths.Assets[:0]
	for _, dir := range pc.Paths.Assets {
		if dir = strings.Trim(strings.TrimSpace(dir), "/"); dir != "" {
			assets = append(assets, dir)
		}
	}
	pc.Paths.Assets = assets

	if pc.Logos.Default = strings.TrimSpace(pc.Logos.Default); pc.Logos.Default == "" {
		pc.Logos.Default = defaultLogo
	}
	named := make(map[string]string, len(pc.Logos.Named))
	for k, v := range pc.Logos.Named {
		named[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	pc.Logos.Named = named
	pc.Server.Host = strings.TrimSpace(pc.Server.Host)
}

func (pc *ProjectConfig) validate(root, stateDir string) error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if !strings.HasPrefix(pc.Site.Domain, "http://") && !strings.HasPrefix(pc.Site.Domain, "https://") {
		return fmt.Errorf("site.domain must be an http(s) URL")
	}
	if pc.Site.Title == "" {
		return fmt.Errorf("site.title is required")
	}
	if (pc.GitHub.Owner == "") != (pc.GitHub.Repo == "") {
		return fmt.Errorf("github.owner and github.repo must be set together")
	}
	if pc.Paths.Posts == "" {
		return fmt.Errorf("paths.posts is required")
	}
	if _, err := filepath.Match(filepath.Base(pc.Paths.Posts), ""); err != nil {
		return fmt.Errorf("paths.posts: %w", err)
	}
	if pc.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if err := pc.validateOutput(root, stateDir); err != nil {
		return err
	}
	if pc.Server.Port < 0 || pc.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	return nil
}

// validateOutput rejects output directories whose removal would take site
// sources with it. Every build starts by deleting the output directory.
func (pc *ProjectConfig) validateOutput(root, stateDir string) error {
	out := pc.Paths.Output
	if within(out, root) {
		return fmt.Errorf("paths.output %s must not contain the site root", out)
	}
	protected := []struct{ what, path string }{
		{"the posts directory", filepath.Dir(pc.Paths.Posts)},
		{"the state directory", stateDir},
	}
	for _, style := range pc.Paths.Styles {
		protected = append(protected, struct{ what, path string }{"stylesheet " + filepath.Base(style), style})
	}
	for _, p := range protected {
		if p.path != "" && within(out, p.path) {
			return fmt.Errorf("paths.output %s must not contain %s", out, p.what)
		}
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
