package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"gopkg.in/yaml.v3"
)

// Preset is a reusable source + mapping pair stored as YAML. FTP passwords
// are never written; they are supplied at run time.
type Preset struct {
	Kind    Kind                         `yaml:"kind"`
	CSV     string                       `yaml:"csv,omitempty"`
	HTTP    *transport.HTTPSourceRequest `yaml:"http,omitempty"`
	FTP     *transport.FTPSourceRequest  `yaml:"ftp,omitempty"`
	Mapping Mapping                      `yaml:"mapping"`
}

func LoadPreset(path string) (Preset, error) {
	var p Preset
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read preset: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if p.Kind == "" {
		switch {
		case p.HTTP != nil:
			p.Kind = KindHTTP
		case p.FTP != nil:
			p.Kind = KindFTP
		case p.CSV != "":
			p.Kind = KindCSV
		}
	}
	if p.Mapping == nil {
		p.Mapping = Mapping{}
	}
	return p, nil
}

func SavePreset(path string, p Preset) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preset dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o600)
}

// Source builds the import source the preset describes. CSV paths are
// resolved relative to the preset's directory.
func (p Preset) Source(baseDir string) (Source, error) {
	switch p.Kind {
	case KindCSV:
		if p.CSV == "" {
			return nil, errors.New("preset: csv path is empty")
		}
		path := p.CSV
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		return OpenCSV(path)
	case KindHTTP:
		if p.HTTP == nil {
			return nil, errors.New("preset: http source is empty")
		}
		return &HTTPSource{HTTPSourceRequest: *p.HTTP}, nil
	case KindFTP:
		if p.FTP == nil {
			return nil, errors.New("preset: ftp source is empty")
		}
		return &FTPSource{FTPSourceRequest: *p.FTP}, nil
	}
	return nil, fmt.Errorf("preset: unknown source kind %q", p.Kind)
}

// PresetFor captures the builder's current source and mapping.
func PresetFor(src Source, m Mapping) Preset {
	p := Preset{Mapping: m.Clone()}
	switch s := src.(type) {
	case *CSVSource:
		p.Kind, p.CSV = KindCSV, s.Filename
	case *HTTPSource:
		req := s.HTTPSourceRequest
		p.Kind, p.HTTP = KindHTTP, &req
	case *FTPSource:
		req := s.FTPSourceRequest
		p.Kind, p.FTP = KindFTP, &req
	}
	return p
}
