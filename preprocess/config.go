package preprocess

import "gopkg.in/yaml.v3"

// Config is the preprocessor's external configuration surface (SPEC_FULL.md
// §2, ambient stack: yaml.v3-backed config the way the teacher loads its own
// settings files). It is independent of any one compilation's source text.
type Config struct {
	UserIncludeDirs   []string          `yaml:"include_dirs"`
	SystemIncludeDirs []string          `yaml:"system_include_dirs"`
	PredefinedMacros  map[string]string `yaml:"predefined_macros"`
	LanguageVersion   string            `yaml:"language_version"`
}

// ParseConfig decodes a yaml document into a Config, defaulting
// LanguageVersion to "1800-2017" when the document omits it.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.LanguageVersion == "" {
		cfg.LanguageVersion = "1800-2017"
	}
	return cfg, nil
}
