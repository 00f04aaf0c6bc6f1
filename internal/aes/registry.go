package aes

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"hidecan/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileConfig maps the profiles: block of the aesthetics YAML file.
type FileConfig struct {
	Profiles map[string]Profile `mapstructure:"profiles" yaml:"profiles"`
}

// Snapshot is the published profile set.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Profiles map[string]Profile
}

// ChangeListener fires after the registry swaps in a new snapshot.
type ChangeListener func(Snapshot)

// Registry manages user aesthetic profiles with hot reload. An invalid file
// never clobbers the last good snapshot.
type Registry struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// profileSchema validates each profile entry before it is accepted.
const profileSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "y_label": {"type": "string"},
    "fill_scale": {"type": "string", "pattern": "^(viridis|plasma|magma|mono:#[0-9a-fA-F]{6})$"},
    "line_colour": {"type": "string", "pattern": "^#[0-9a-fA-F]{6}$"},
    "point_shape": {"type": "string", "enum": ["circle", "triangle", "diamond", "rect", "pin", "arrow"]},
    "show_name": {"type": "boolean"}
  },
  "additionalProperties": false
}`

var compiledProfileSchema = jsonschema.MustCompileString("profile.json", profileSchema)

// NewRegistry reads the profile file and watches it for updates.
func NewRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("aesthetics registry requires path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read aesthetics file failed: %w", err)
	}
	r := &Registry{path: path, v: v}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("aesthetics reload failed: %v", err)
			return
		}
		r.notifyListeners()
	})
	v.WatchConfig()
	return r, nil
}

// Snapshot returns the current profile set.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSnapshot(r.snapshot)
}

// Profile returns the profile registered under tag.
func (r *Registry) Profile(tag string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.snapshot.Profiles[strings.ToLower(strings.TrimSpace(tag))]
	return p, ok
}

// Subscribe registers a listener for reloads.
func (r *Registry) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Registry) reload() error {
	cfg, err := readProfileFile(r.path)
	if err != nil {
		return err
	}
	profiles := make(map[string]Profile, len(cfg.Profiles))
	for name, p := range cfg.Profiles {
		norm, err := normalizeProfile(name, p)
		if err != nil {
			return err
		}
		profiles[norm.ID] = norm
	}
	r.mu.Lock()
	r.snapshot = Snapshot{
		Version:  r.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Profiles: profiles,
	}
	r.mu.Unlock()
	logger.Infof("aesthetics registry loaded %d profiles from %s", len(profiles), filepath.Base(r.path))
	return nil
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	snap := cloneSnapshot(r.snapshot)
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.RUnlock()
	for _, fn := range listeners {
		go func(cb ChangeListener) {
			defer safeRecover("aesthetics listener")
			cb(snap)
		}(fn)
	}
}

func normalizeProfile(name string, p Profile) (Profile, error) {
	p.ID = strings.ToLower(strings.TrimSpace(p.ID))
	if p.ID == "" {
		p.ID = strings.ToLower(strings.TrimSpace(name))
	}
	if p.ID == "" {
		return Profile{}, fmt.Errorf("aesthetics profile with empty id")
	}
	if err := compiledProfileSchema.Validate(profileDoc(p)); err != nil {
		return Profile{}, fmt.Errorf("aesthetics profile %q invalid: %w", p.ID, err)
	}
	return p, nil
}

func profileDoc(p Profile) map[string]any {
	doc := map[string]any{"id": p.ID, "show_name": p.ShowName}
	if p.YLabel != "" {
		doc["y_label"] = p.YLabel
	}
	if p.FillScale != "" {
		doc["fill_scale"] = p.FillScale
	}
	if p.LineColour != "" {
		doc["line_colour"] = p.LineColour
	}
	if p.PointShape != "" {
		doc["point_shape"] = p.PointShape
	}
	return doc
}

func cloneSnapshot(src Snapshot) Snapshot {
	dst := Snapshot{
		Version:  src.Version,
		LoadedAt: src.LoadedAt,
		Profiles: make(map[string]Profile, len(src.Profiles)),
	}
	for id, p := range src.Profiles {
		dst.Profiles[id] = p
	}
	return dst
}

func safeRecover(tag string) {
	if r := recover(); r != nil {
		logger.Errorf("%s panic: %v", tag, r)
	}
}

func readProfileFile(path string) (FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read aesthetics file failed: %w", err)
	}
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse aesthetics file failed: %w", err)
	}
	return cfg, nil
}
