package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishcast/internal/types"
)

// embeddedCopy returns the embedded catalogue as a mutable in-memory FS.
func embeddedCopy(t *testing.T) fstest.MapFS {
	t.Helper()
	out := fstest.MapFS{}
	for _, name := range []string{RulesFile, ScoringFile, SeasonalityFile, LocationsFile} {
		data, err := embedded.ReadFile("data/" + name)
		require.NoError(t, err)
		out[name] = &fstest.MapFile{Data: data}
	}
	return out
}

func replaceIn(t *testing.T, fsys fstest.MapFS, name, old, repl string) {
	t.Helper()
	data := string(fsys[name].Data)
	require.Contains(t, data, old, "fixture text missing from %s", name)
	fsys[name] = &fstest.MapFile{Data: []byte(strings.Replace(data, old, repl, 1))}
}

func requireCode(t *testing.T, err error, code types.ErrorCode) {
	t.Helper()
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr), "want *LoadError, got %T", err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, code, appErr.Code, err.Error())
	assert.Equal(t, types.ClassConfig, appErr.Code.Class())
}

func TestLoadEmbedded(t *testing.T) {
	b, err := LoadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, Versions{Rules: "1.3.2", Scoring: "2.3.0", Seasonality: "1.2.0", Locations: "1.1.0"}, b.Versions)
	assert.Len(t, b.Digest, 64)
	assert.Empty(t, b.Warnings)

	assert.Equal(t, []types.SpeciesID{
		types.SpeciesIstavrit, types.SpeciesCinekop, types.SpeciesSarikanat,
		types.SpeciesPalamut, types.SpeciesKaragoz, types.SpeciesMirmir,
	}, b.Species)
	assert.Len(t, b.Locations, 9)
	assert.Equal(t, []types.RegionID{types.RegionAvrupa, types.RegionAnadolu, types.RegionCityBelt}, b.Regions())

	enabled, disabled := b.Rules.Counts()
	assert.Equal(t, 21, enabled)
	assert.Equal(t, 1, disabled)

	assert.Equal(t, 12, b.Caps.WindCoast)
	assert.Equal(t, 25, b.Caps.TotalCap)
	assert.Equal(t, "Çinekop", b.SpeciesName(types.SpeciesCinekop))
	assert.Equal(t, "Kurşun Arkası", b.TechniqueName(types.TechniqueKursunArkasi))
	assert.Equal(t, "hamsi", b.SpeciesName("hamsi"))

	loc, ok := b.Location("bebek")
	require.True(t, ok)
	assert.Equal(t, types.ShoreEuropean, loc.Shore)
	assert.True(t, loc.PelagicCorridor)

	for sp, w := range b.Scoring.Weights {
		assert.True(t, w.Balanced(), "weights for %s", sp)
	}
	assert.Len(t, b.Composer.Daylight, 12)
	assert.Equal(t, []types.TechniqueID{types.TechniqueLRF}, b.Composer.ShelteredExceptions.AllowedTechniques)
}

func TestOnlyAbsoluteRulesCarryNoGo(t *testing.T) {
	b, err := LoadEmbedded()
	require.NoError(t, err)

	var noGo []string
	for _, r := range b.Rules.Rules() {
		if r.HasNoGo() {
			noGo = append(noGo, r.ID)
			assert.Equal(t, types.CategoryAbsolute, r.Category)
		}
	}
	assert.Equal(t, []string{"extreme_wind_nogo"}, noGo)
}

func TestLoadFSMatchesEmbedded(t *testing.T) {
	fromEmbed, err := LoadEmbedded()
	require.NoError(t, err)
	fromMap, err := LoadFS(embeddedCopy(t))
	require.NoError(t, err)

	assert.Equal(t, fromEmbed.Digest, fromMap.Digest)
	assert.Equal(t, fromEmbed.Versions, fromMap.Versions)
}

func TestDigestTracksContent(t *testing.T) {
	base, err := LoadFS(embeddedCopy(t))
	require.NoError(t, err)

	fsys := embeddedCopy(t)
	replaceIn(t, fsys, LocationsFile, `name: "Bebek"`, `name: "Bebek Koyu"`)
	changed, err := LoadFS(fsys)
	require.NoError(t, err)

	assert.NotEqual(t, base.Digest, changed.Digest)
	assert.Equal(t, base.Versions, changed.Versions)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, fsys fstest.MapFS)
		code   types.ErrorCode
	}{
		{
			name: "schema violation",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, RulesFile, "noGo: true", `noGo: "yes"`)
			},
			code: types.ErrCodeConfigSchema,
		},
		{
			name: "malformed comparison caught by schema",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, RulesFile, `windSpeedKmh: ">=35"`, `windSpeedKmh: ">=strong"`)
			},
			code: types.ErrCodeConfigSchema,
		},
		{
			name: "duplicate rule id",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, RulesFile, "- id: dusk_spin", "- id: dawn_capari")
			},
			code: types.ErrCodeConfigDuplicateID,
		},
		{
			name: "no-go outside absolute",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, RulesFile, "category: absolute", "category: windCoast")
			},
			code: types.ErrCodeConfigRule,
		},
		{
			name: "unbalanced weights",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, ScoringFile, "istavrit:  {pressure: 0.20", "istavrit:  {pressure: 0.40")
			},
			code: types.ErrCodeConfigScoring,
		},
		{
			name: "unknown scoring key",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, ScoringFile, "ruleBonusCaps:", "ruleBonusCap:")
			},
			code: types.ErrCodeConfigScoring,
		},
		{
			name: "evaluated species without weights",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, ScoringFile, "    kolyoz:    {pressure: 0.20, wind: 0.20, seaTemp: 0.25, solunar: 0.15, time: 0.20}\n", "")
				replaceIn(t, fsys, ScoringFile, "evaluated: [istavrit,", "evaluated: [kolyoz, istavrit,")
			},
			code: types.ErrCodeConfigScoring,
		},
		{
			name: "best hour out of range",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, ScoringFile, "istavrit:  [[5, 9], [16, 20]]", "istavrit:  [[29, 40], [-3, 99]]")
			},
			code: types.ErrCodeConfigScoring,
		},
		{
			name: "default best hour out of range",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, ScoringFile, "defaultBestHours: [[5, 8], [16, 19]]", "defaultBestHours: [[5, 8], [16, 24]]")
			},
			code: types.ErrCodeConfigScoring,
		},
		{
			name: "nocturnal window out of range",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, ScoringFile, "window: [22, 4]", "window: [22, -1]")
			},
			code: types.ErrCodeConfigScoring,
		},
		{
			name: "unknown wind shift direction",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, ScoringFile, "{directions: [NE, N], shore: anatolian", "{directions: [NORTHEAST, XX], shore: anatolian")
			},
			code: types.ErrCodeConfigScoring,
		},
		{
			name: "long-form lodos direction",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, ScoringFile, "lodosDirections: [SW, S]", "lodosDirections: [SOUTHWEST]")
			},
			code: types.ErrCodeConfigScoring,
		},
		{
			name: "sixteen point poyraz direction",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, ScoringFile, "poyrazDirections: [NE, N]", "poyrazDirections: [NNE, N]")
			},
			code: types.ErrCodeConfigScoring,
		},
		{
			name: "season floor below one",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, SeasonalityFile, "offFloor: 15", "offFloor: 0")
			},
			code: types.ErrCodeConfigSeason,
		},
		{
			name: "overlapping season months",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, SeasonalityFile, "offMonths: [6, 7]\n", "offMonths: [6, 7, 10]\n")
			},
			code: types.ErrCodeConfigSeason,
		},
		{
			name: "duplicate location",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, LocationsFile, "- id: moda", "- id: bebek")
			},
			code: types.ErrCodeConfigLocations,
		},
		{
			name: "sixteen point sheltered cardinal",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, LocationsFile, "shelteredFrom: [SW, W]", "shelteredFrom: [SSW, W]")
			},
			code: types.ErrCodeConfigLocations,
		},
		{
			name: "shelter score out of range",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				replaceIn(t, fsys, LocationsFile, "shelterScore: 0.4\n", "shelterScore: 1.4\n")
			},
			code: types.ErrCodeConfigLocations,
		},
		{
			name: "missing document",
			mutate: func(t *testing.T, fsys fstest.MapFS) {
				delete(fsys, LocationsFile)
			},
			code: types.ErrCodeConfigCatalog,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fsys := embeddedCopy(t)
			tc.mutate(t, fsys)
			b, err := LoadFS(fsys)
			assert.Nil(t, b)
			requireCode(t, err, tc.code)
		})
	}
}

func TestUnknownConditionFieldIsWarning(t *testing.T) {
	fsys := embeddedCopy(t)
	replaceIn(t, fsys, RulesFile, "      month: [1, 2]\n", "      month: [1, 2]\n      after_rain: true\n")

	b, err := LoadFS(fsys)
	require.NoError(t, err)
	require.Len(t, b.Warnings, 1)
	assert.Contains(t, b.Warnings[0], "winter_lull")
	assert.Contains(t, b.Warnings[0], "after_rain")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	for name, f := range embeddedCopy(t) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), f.Data, 0o600))
	}

	b, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, b.Locations, 9)

	_, err = LoadDir(filepath.Join(dir, RulesFile))
	requireCode(t, err, types.ErrCodeConfigCatalog)

	_, err = LoadDir(filepath.Join(dir, "missing"))
	requireCode(t, err, types.ErrCodeConfigCatalog)
}

func TestWithRulesDisabled(t *testing.T) {
	b, err := LoadEmbedded()
	require.NoError(t, err)

	off, err := b.WithRulesDisabled("test", "extreme_wind_nogo")
	require.NoError(t, err)

	enabled, disabled := off.Rules.Counts()
	assert.Equal(t, 20, enabled)
	assert.Equal(t, 2, disabled)

	enabled, _ = b.Rules.Counts()
	assert.Equal(t, 21, enabled, "original bundle is untouched")
	assert.True(t, b.RuleSpecs[0].IsEnabled())

	_, err = b.WithRulesDisabled("test", "no_such_rule")
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeConfigRule, appErr.Code)
}
