package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds every setting a check invocation can read: the external
// binaries to spawn, how long to let them run, and which optional
// optimizations to apply.
type Config struct {
	// OracleCommand/OracleArgs name the external Petri-net reachability
	// checker (package oracle).
	OracleCommand string   `yaml:"oracle_command,omitempty"`
	OracleArgs    []string `yaml:"oracle_args,omitempty"`

	// SMTCommand/SMTArgs name the external SMT-LIB solver (package smt).
	SMTCommand string   `yaml:"smt_command,omitempty"`
	SMTArgs    []string `yaml:"smt_args,omitempty"`

	// TimeoutSeconds is loaded and reported by cmd/ser doctor; it is not
	// applied to oracle or SMT invocations (cmd/ser check takes its
	// overall timeout from its --timeout flag).
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// Bound overrides the inferred value-domain ceiling used when
	// building the non-serial complement (0 means infer automatically).
	Bound int `yaml:"bound,omitempty"`

	// Interner names a place/transition interning backend, "map" by
	// default. The value is loaded and reported by cmd/ser doctor; no
	// code path selects a backend from it, and internal/intern.Table is
	// always map-backed.
	Interner string `yaml:"interner,omitempty"`

	// SocketPath is the Unix socket cmd/ser serve listens on and
	// cmd/ser check --remote dials.
	SocketPath string `yaml:"socket_path,omitempty"`
}

func defaults() Config {
	return Config{
		OracleCommand:  "petri-reach",
		SMTCommand:     "z3",
		SMTArgs:        []string{"-in"},
		TimeoutSeconds: 30,
		Bound:          0,
		Interner:       "map",
		SocketPath:     filepath.Join(os.TempDir(), "ser.sock"),
	}
}

// Manager merges the user config file (~/.config/ser/config.yaml) with
// the project config file (./.ser/config.yaml), project overriding user,
// field by field — the same shape as the JSON settings.json merge this
// package used before, rendered in YAML per this project's configuration
// format.
type Manager struct {
	user    Config
	project Config
	merged  Config
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Load(userConfigDir, projectDir string) error {
	if err := loadYAML(filepath.Join(userConfigDir, "config.yaml"), &m.user); err != nil {
		return err
	}
	if err := loadYAML(filepath.Join(projectDir, ".ser", "config.yaml"), &m.project); err != nil {
		return err
	}
	m.merge()
	return nil
}

func loadYAML(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, out)
}

func (m *Manager) merge() {
	d := defaults()
	m.merged = Config{
		OracleCommand:  firstNonEmpty(m.project.OracleCommand, m.user.OracleCommand, d.OracleCommand),
		OracleArgs:     firstNonEmptySlice(m.project.OracleArgs, m.user.OracleArgs, d.OracleArgs),
		SMTCommand:     firstNonEmpty(m.project.SMTCommand, m.user.SMTCommand, d.SMTCommand),
		SMTArgs:        firstNonEmptySlice(m.project.SMTArgs, m.user.SMTArgs, d.SMTArgs),
		TimeoutSeconds: firstNonZero(m.project.TimeoutSeconds, m.user.TimeoutSeconds, d.TimeoutSeconds),
		Bound:          firstNonZero(m.project.Bound, m.user.Bound, d.Bound),
		Interner:       firstNonEmpty(m.project.Interner, m.user.Interner, d.Interner),
		SocketPath:     firstNonEmpty(m.project.SocketPath, m.user.SocketPath, d.SocketPath),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptySlice(vals ...[]string) []string {
	for _, v := range vals {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func (m *Manager) Get() *Config {
	return &m.merged
}

func (m *Manager) SaveUserConfig(userConfigDir string) error {
	return saveYAML(filepath.Join(userConfigDir, "config.yaml"), &m.user)
}

func (m *Manager) SaveProjectConfig(projectDir string) error {
	return saveYAML(filepath.Join(projectDir, ".ser", "config.yaml"), &m.project)
}

func saveYAML(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load is the convenience entry point cmd/ser uses: resolve the standard
// user/project directories and return the merged config.
func Load() (*Config, error) {
	userDir, err := GetUserConfigDir()
	if err != nil {
		return nil, err
	}
	projectDir, err := GetProjectDir()
	if err != nil {
		return nil, err
	}
	m := NewManager()
	if err := m.Load(userDir, projectDir); err != nil {
		return nil, err
	}
	return m.Get(), nil
}
