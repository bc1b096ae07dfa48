package config

import "gopkg.in/yaml.v3"

// Load decodes a YAML document onto a copy of Defaults(), so an option the
// document omits keeps its default rather than zeroing out.
func Load(data []byte) (Config, error) {
	c := Defaults()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Marshal renders c back to YAML, for round-tripping a validated config
// into a scenario definition file.
func Marshal(c Config) ([]byte, error) {
	return yaml.Marshal(c)
}
