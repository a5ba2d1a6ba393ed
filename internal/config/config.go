package config

import (
        "errors"
        "fmt"
        "os"
        "path/filepath"
        "strings"
        "time"

        "mondrian-cli/internal/api"

        "github.com/joho/godotenv"
        "gopkg.in/yaml.v3"
)

const DefaultHomePage = "home"

// Config is the resolved configuration. The YAML file at ConfigPath() provides
// the base values; environment variables override them and command-line flags
// override both (see cli).
type Config struct {
        APIURL   string        `yaml:"api_url,omitempty" json:"apiUrl"`
        Timeout  time.Duration `yaml:"timeout,omitempty" json:"timeout"`
        HomePage string        `yaml:"home_page,omitempty" json:"homePage"`
        Format   string        `yaml:"format,omitempty" json:"format"`
        LogFile  string        `yaml:"log_file,omitempty" json:"logFile,omitempty"`
        Debug    bool          `yaml:"debug,omitempty" json:"debug"`

        TUI TUIConfig `yaml:"tui,omitempty" json:"tui"`
}

type TUIConfig struct {
        // Theme is "light", "dark" or "auto".
        Theme string `yaml:"theme,omitempty" json:"theme,omitempty"`
        // RenderMarkdown toggles markdown rendering of box content.
        RenderMarkdown *bool `yaml:"render_markdown,omitempty" json:"renderMarkdown,omitempty"`
}

func (c TUIConfig) MarkdownEnabled() bool {
        if c.RenderMarkdown == nil {
                return true
        }
        return *c.RenderMarkdown
}

func Defaults() Config {
        return Config{
                APIURL:   api.DefaultBaseURL,
                Timeout:  api.DefaultTimeout,
                HomePage: DefaultHomePage,
                Format:   "json",
        }
}

func ConfigDir() (string, error) {
        // Test/advanced override (keeps unit tests from touching ~/.mondrian).
        if v := strings.TrimSpace(os.Getenv("MONDRIAN_CONFIG_DIR")); v != "" {
                return v, nil
        }
        home, err := os.UserHomeDir()
        if err != nil {
                return "", err
        }
        return filepath.Join(home, ".mondrian"), nil
}

func ConfigPath() (string, error) {
        dir, err := ConfigDir()
        if err != nil {
                return "", err
        }
        return filepath.Join(dir, "config.yaml"), nil
}

// Load resolves configuration from defaults, the config file (path, or
// ConfigPath() when empty), a .env file in the working directory and the
// environment. A missing config file is not an error.
func Load(path string) (Config, error) {
        cfg := Defaults()

        explicit := strings.TrimSpace(path) != ""
        if !explicit {
                p, err := ConfigPath()
                if err != nil {
                        return cfg, err
                }
                path = p
        }
        b, err := os.ReadFile(path)
        switch {
        case err == nil:
                if err := yaml.Unmarshal(b, &cfg); err != nil {
                        return cfg, fmt.Errorf("parse %s: %w", path, err)
                }
        case errors.Is(err, os.ErrNotExist) && !explicit:
        default:
                return cfg, fmt.Errorf("read config: %w", err)
        }

        // .env is optional; existing environment variables win.
        if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
                return cfg, fmt.Errorf("load .env: %w", err)
        }

        if err := applyEnv(&cfg); err != nil {
                return cfg, err
        }
        return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
        if v := strings.TrimSpace(os.Getenv("MONDRIAN_API_URL")); v != "" {
                cfg.APIURL = v
        }
        if v := strings.TrimSpace(os.Getenv("MONDRIAN_TIMEOUT")); v != "" {
                d, err := time.ParseDuration(v)
                if err != nil {
                        return fmt.Errorf("MONDRIAN_TIMEOUT: %w", err)
                }
                cfg.Timeout = d
        }
        if v := strings.TrimSpace(os.Getenv("MONDRIAN_HOME_PAGE")); v != "" {
                cfg.HomePage = v
        }
        if v := strings.TrimSpace(os.Getenv("MONDRIAN_FORMAT")); v != "" {
                cfg.Format = v
        }
        if v := strings.TrimSpace(os.Getenv("MONDRIAN_LOG_FILE")); v != "" {
                cfg.LogFile = v
        }
        if v := strings.TrimSpace(os.Getenv("MONDRIAN_TUI_THEME")); v != "" {
                cfg.TUI.Theme = v
        }
        return nil
}

func (c Config) Validate() error {
        if strings.TrimSpace(c.APIURL) == "" {
                return errors.New("api url is empty")
        }
        if c.Timeout < 0 {
                return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
        }
        switch strings.ToLower(strings.TrimSpace(c.TUI.Theme)) {
        case "", "auto", "light", "dark":
        default:
                return fmt.Errorf("unknown tui theme: %s", c.TUI.Theme)
        }
        return nil
}

// Save writes cfg to path (or ConfigPath() when empty), creating the directory.
func Save(path string, cfg Config) error {
        if strings.TrimSpace(path) == "" {
                p, err := ConfigPath()
                if err != nil {
                        return err
                }
                path = p
        }
        if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
                return err
        }
        b, err := yaml.Marshal(cfg)
        if err != nil {
                return err
        }
        tmp := path + ".tmp"
        if err := os.WriteFile(tmp, b, 0o644); err != nil {
                return err
        }
        return os.Rename(tmp, path)
}
