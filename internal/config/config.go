package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/sg/dynamic"
	"github.com/gnolang/sg/lang"
)

// DefaultFileName is looked up in the working directory when no
// configuration path is given.
const DefaultFileName = "sgconfig.yml"

// CustomLanguage declares a grammar library to load at startup.
type CustomLanguage struct {
	LibraryPath    string   `yaml:"libraryPath"`
	Extensions     []string `yaml:"extensions"`
	LanguageSymbol string   `yaml:"languageSymbol,omitempty"`
	MetaVarChar    string   `yaml:"metaVarChar,omitempty"`
	ExpandoChar    string   `yaml:"expandoChar,omitempty"`
}

// Config is the content of sgconfig.yml.
type Config struct {
	CustomLanguages map[string]CustomLanguage `yaml:"customLanguages"`

	// directory relative library paths are resolved against
	dir string
}

// Load reads the configuration at path. A missing file at the default
// location yields an empty configuration.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{dir: "."}, nil
		}
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return &cfg, nil
}

// Dir returns the directory of the configuration file.
func (c *Config) Dir() string { return c.dir }

// Registrations converts the custom languages into registry descriptors,
// ordered by name.
func (c *Config) Registrations() []dynamic.Registration {
	names := make([]string, 0, len(c.CustomLanguages))
	for name := range c.CustomLanguages {
		names = append(names, name)
	}
	sort.Strings(names)

	regs := make([]dynamic.Registration, 0, len(names))
	for _, name := range names {
		cl := c.CustomLanguages[name]
		regs = append(regs, dynamic.Registration{
			Name:        name,
			LibraryPath: cl.LibraryPath,
			Symbol:      cl.LanguageSymbol,
			Extensions:  cl.Extensions,
			MetaVarChar: cl.MetaVarChar,
			ExpandoChar: cl.ExpandoChar,
		})
	}
	return regs
}

// NewRegistry registers every custom language of the configuration. The
// registry is returned even when some grammars fail to load; the error then
// joins one *dynamic.LoadError per failed grammar. Invalid declarations
// return a nil registry.
func (c *Config) NewRegistry(logger *zap.Logger, opts ...dynamic.Option) (*dynamic.Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]dynamic.Option{
		dynamic.WithBaseDir(c.dir),
		dynamic.WithLogger(logger),
	}, opts...)
	reg := lang.NewRegistry(opts...)

	err := reg.Register(c.Registrations()...)
	if err == nil {
		return reg, nil
	}
	var loadErr *dynamic.LoadError
	if errors.As(err, &loadErr) {
		return reg, err
	}
	return nil, err
}

// Write stores cfg as YAML at path.
func Write(path string, cfg *Config) error {
	d, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
