package seed

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Options controls the size and shape of a seeding run. Zero values fall
// back to the "small" preset.
type Options struct {
	Users           int     `yaml:"users"`
	PostsPerUser    int     `yaml:"postsPerUser"`
	CommentsPerPost int     `yaml:"commentsPerPost"`
	FollowsPerUser  int     `yaml:"followsPerUser"`
	MaxLikes        int     `yaml:"maxLikes"`
	MaxDays         int     `yaml:"maxDays"`
	ImageRatio      float64 `yaml:"imageRatio"`
	BatchSize       int     `yaml:"batchSize"`
	RandomSeed      int64   `yaml:"randomSeed"`
	FastHash        bool    `yaml:"fastHash"`
	Clean           bool    `yaml:"clean"`
}

// Presets are the built-in named seeding profiles.
var Presets = map[string]Options{
	"small": {
		Users: 10, PostsPerUser: 3, CommentsPerPost: 2, FollowsPerUser: 3,
		MaxLikes: 20, MaxDays: 30, ImageRatio: 0.3, BatchSize: 100,
	},
	"medium": {
		Users: 50, PostsPerUser: 5, CommentsPerPost: 3, FollowsPerUser: 10,
		MaxLikes: 200, MaxDays: 90, ImageRatio: 0.4, BatchSize: 200,
	},
	"large": {
		Users: 500, PostsPerUser: 10, CommentsPerPost: 4, FollowsPerUser: 25,
		MaxLikes: 1000, MaxDays: 365, ImageRatio: 0.4, BatchSize: 500, FastHash: true,
	},
}

// PresetNames lists the built-in presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePreset returns a built-in preset by name, or loads nameOrPath as a
// YAML file when no preset has that name.
func ResolvePreset(nameOrPath string) (Options, error) {
	if opts, ok := Presets[nameOrPath]; ok {
		return opts, nil
	}
	return LoadPresetFile(nameOrPath)
}

// LoadPresetFile reads Options from a YAML file. Unknown keys are rejected.
func LoadPresetFile(path string) (Options, error) {
	raw, err := os.ReadFile(path) // #nosec G304: operator-supplied path
	if err != nil {
		return Options{}, fmt.Errorf("read preset %q: %w", path, err)
	}
	return ParsePreset(raw)
}

// ParsePreset decodes a YAML preset document.
func ParsePreset(raw []byte) (Options, error) {
	var opts Options
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		return Options{}, fmt.Errorf("parse preset: %w", err)
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func (o Options) withDefaults() Options {
	def := Presets["small"]
	if o.Users == 0 {
		o.Users = def.Users
	}
	if o.MaxDays <= 0 {
		o.MaxDays = def.MaxDays
	}
	if o.BatchSize <= 0 {
		o.BatchSize = def.BatchSize
	}
	return o
}

// Validate rejects negative counts and ratios outside [0, 1].
func (o Options) Validate() error {
	if o.Users < 0 || o.PostsPerUser < 0 || o.CommentsPerPost < 0 || o.FollowsPerUser < 0 || o.MaxLikes < 0 {
		return errors.New("seed counts must not be negative")
	}
	if o.ImageRatio < 0 || o.ImageRatio > 1 {
		return errors.New("imageRatio must be between 0 and 1")
	}
	return nil
}
