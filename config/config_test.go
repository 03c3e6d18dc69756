package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/choirscore/constants"
	"github.com/jsphweid/choirscore/model"
)

func TestDefaults(t *testing.T) {
	assert := assert.New(t)
	c := Default()
	assert.Equal(1, c.Version)
	assert.Equal(constants.SoloVolume, c.Mix.SoloVolume)
	assert.Equal(constants.AccompanimentVolume, c.Mix.AccompanimentVolume)
	assert.Equal(constants.DynamicsVelocity, c.Mix.Velocity)
	assert.Equal(constants.DefaultTempo, c.Timeline.DefaultTempo)
	assert.Empty(c.Roles)
}

func TestParse(t *testing.T) {
	assert := assert.New(t)
	c, err := Parse("test.yaml", []byte(`
version: 1
roles:
  " Soprano ": ["S.", "  Sopr  ", ""]
part_names:
  Mezzo-Soprano:
    long: " Mezzo 1 "
    short: M1
mix:
  accompaniment_volume: 0.2
timeline:
  default_tempo: 1.5
`))
	require.NoError(t, err)
	assert.Equal([]string{"S.", "Sopr"}, c.Roles["soprano"])
	assert.Equal(model.PartName{Long: "Mezzo 1", Short: "M1"}, c.PartNames["mezzo-soprano"])
	assert.Equal(0.2, c.Mix.AccompanimentVolume)
	assert.Equal(constants.SoloVolume, c.Mix.SoloVolume)
	assert.Equal(1.5, c.Timeline.DefaultTempo)
}

func TestParseInvalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":  "roles: [",
		"version":   "version: 3",
		"volume":    "mix:\n  solo_volume: 2",
		"velocity":  "mix:\n  velocity: 200",
		"part name": "part_names:\n  alto:\n    short: A",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("test.yaml", []byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "choirscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mix:\n  velocity: 64\n"), 0o644))
	t.Setenv(constants.ConfigEnv, path)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 64, c.Mix.Velocity)
}

func TestLoadWithoutPath(t *testing.T) {
	t.Setenv(constants.ConfigEnv, "")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvMissingFileIgnored(t *testing.T) {
	t.Setenv("CHOIRSCORE_ENV_FILE", filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, LoadEnv())
}
