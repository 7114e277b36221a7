package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz"`
	DayTicks   int `yaml:"day_ticks"`

	WorldSize int `yaml:"world_size"`
	ChunkSize int `yaml:"chunk_size"`
	MaxHeight int `yaml:"max_height"`
	SeaLevel  int `yaml:"sea_level"`

	RenderRadius int  `yaml:"render_radius"`
	BuildBudget  int  `yaml:"build_budget"`
	ShadowRadius int  `yaml:"shadow_radius"`
	EvictPadding int  `yaml:"evict_padding"`
	GreedyMesh   bool `yaml:"greedy_mesh"`
	EvictChunks  bool `yaml:"evict_chunks"`

	Movement Movement `yaml:"movement"`
}

type Movement struct {
	Gravity      float64 `yaml:"gravity"`
	WalkSpeed    float64 `yaml:"walk_speed"`
	FlySpeed     float64 `yaml:"fly_speed"`
	JumpSpeed    float64 `yaml:"jump_speed"`
	EyeHeight    float64 `yaml:"eye_height"`
	DoubleTapSec float64 `yaml:"double_tap_sec"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1",
		TickRateHz:      30,
		DayTicks:        14400,
		WorldSize:       256,
		ChunkSize:       16,
		MaxHeight:       48,
		SeaLevel:        12,
		RenderRadius:    4,
		BuildBudget:     2,
		ShadowRadius:    2,
		EvictPadding:    2,
		GreedyMesh:      true,
		EvictChunks:     true,
		Movement: Movement{
			Gravity:      24,
			WalkSpeed:    5.5,
			FlySpeed:     11,
			JumpSpeed:    8.5,
			EyeHeight:    1.7,
			DoubleTapSec: 0.3,
		},
	}
}

// Load reads tuning from a yaml file. Unset fields fall back to
// Defaults, so partial files stay valid.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.WorldSize <= 0 || t.ChunkSize <= 0 || t.WorldSize%t.ChunkSize != 0 {
		return fmt.Errorf("tuning: world_size %d must be a positive multiple of chunk_size %d", t.WorldSize, t.ChunkSize)
	}
	if t.MaxHeight < 8 {
		return fmt.Errorf("tuning: max_height %d too small", t.MaxHeight)
	}
	if t.TickRateHz <= 0 || t.DayTicks <= 0 {
		return fmt.Errorf("tuning: tick_rate_hz and day_ticks must be positive")
	}
	if t.RenderRadius < 1 || t.BuildBudget < 1 {
		return fmt.Errorf("tuning: render_radius and build_budget must be at least 1")
	}
	return nil
}

// WorldChunks is the world side length in chunks.
func (t Tuning) WorldChunks() int {
	return t.WorldSize / t.ChunkSize
}
