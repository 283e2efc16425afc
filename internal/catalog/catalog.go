// Package catalog loads the versioned engine configuration: the rule
// catalogue, scoring tables, season tables and locations.
//
// Loading is fail-fast. Documents are decoded strictly, the rule catalogue
// is checked against its JSON Schema, typed structs are validated with
// go-playground/validator and cross-document invariants are enforced. The
// resulting Bundle is immutable and shared read-only by every evaluation.
package catalog

import (
	"bytes"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"fishcast/internal/mode"
	"fishcast/internal/rules"
	"fishcast/internal/scoring"
	"fishcast/internal/types"
	"fishcast/internal/wind"
)

// Catalogue file names, relative to the catalogue root.
const (
	RulesFile       = "rules.yaml"
	ScoringFile     = "scoring.yaml"
	SeasonalityFile = "seasonality.yaml"
	LocationsFile   = "locations.yaml"
	RulesSchemaFile = "rules_schema.json"
)

const rulesSchemaURL = "https://fishcast.schemas.local/catalog/rules.schema.json"

//go:embed data/*.yaml data/*.json
var embedded embed.FS

// LoadError reports a catalogue that cannot be served. Err is always an
// *types.AppError carrying a config_* code.
type LoadError struct {
	File string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.File, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(file string, code types.ErrorCode, msg string, err error) *LoadError {
	return &LoadError{File: file, Err: types.NewAppError(code, msg, err)}
}

// Versions echoes the version string of every document.
type Versions struct {
	Rules       string `json:"rules"`
	Scoring     string `json:"scoring"`
	Seasonality string `json:"seasonality"`
	Locations   string `json:"locations"`
}

// Bundle is the validated, immutable engine configuration.
type Bundle struct {
	Versions Versions
	// Digest is the BLAKE2b-256 of the four documents, hex-encoded.
	Digest string

	Rules     *rules.Engine
	RuleSpecs []rules.RuleSpec
	Caps      rules.Caps

	Scoring   scoring.Config
	Season    scoring.SeasonTable
	Mode      mode.Config
	WaterMass wind.ProxyConfig
	Composer  ComposerConfig

	// Species are the species scored for every location, in display order.
	Species        []types.SpeciesID
	SpeciesNames   map[types.SpeciesID]string
	TechniqueNames map[types.TechniqueID]string

	Locations []types.Location

	// Warnings are non-fatal findings, e.g. conditions on fields no context
	// provides.
	Warnings []string
}

// SpeciesName returns the Turkish display name of species.
func (b *Bundle) SpeciesName(id types.SpeciesID) string {
	if n, ok := b.SpeciesNames[id]; ok {
		return n
	}
	return string(id)
}

// TechniqueName returns the Turkish display name of a technique.
func (b *Bundle) TechniqueName(id types.TechniqueID) string {
	if n, ok := b.TechniqueNames[id]; ok {
		return n
	}
	return string(id)
}

// Location returns the location with id.
func (b *Bundle) Location(id string) (types.Location, bool) {
	for _, l := range b.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return types.Location{}, false
}

// Regions returns the regions that have at least one location, in the
// canonical order avrupa, anadolu, city_belt, followed by any others sorted.
func (b *Bundle) Regions() []types.RegionID {
	present := make(map[types.RegionID]bool)
	for _, l := range b.Locations {
		present[l.Region] = true
	}
	var out []types.RegionID
	for _, r := range []types.RegionID{types.RegionAvrupa, types.RegionAnadolu, types.RegionCityBelt} {
		if present[r] {
			out = append(out, r)
			delete(present, r)
		}
	}
	var rest []types.RegionID
	for r := range present {
		rest = append(rest, r)
	}
	slices.Sort(rest)
	return append(out, rest...)
}

// WithRulesDisabled returns a copy of b whose rule engine has the rules with
// the given ids disabled. Unknown ids are an error.
func (b *Bundle) WithRulesDisabled(reason string, ids ...string) (*Bundle, error) {
	specs := slices.Clone(b.RuleSpecs)
	for _, id := range ids {
		idx := slices.IndexFunc(specs, func(s rules.RuleSpec) bool { return s.ID == id })
		if idx < 0 {
			return nil, types.NewAppError(types.ErrCodeConfigRule, fmt.Sprintf("unknown rule %q", id), nil)
		}
		disabled := false
		specs[idx].Enabled = &disabled
		specs[idx].DisabledReason = reason
	}
	compiled, err := rules.Compile(specs)
	if err != nil {
		return nil, err
	}
	out := *b
	out.RuleSpecs = specs
	out.Rules = rules.NewEngine(compiled, b.Caps, b.Species)
	return &out, nil
}

// LoadEmbedded loads the catalogue compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, loadErr("data", types.ErrCodeConfigCatalog, "embedded catalogue missing", err)
	}
	return LoadFS(sub)
}

// LoadDir loads the catalogue from a directory on disk.
func LoadDir(dir string) (*Bundle, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, loadErr(dir, types.ErrCodeConfigCatalog, "catalogue directory not readable", err)
	}
	if !info.IsDir() {
		return nil, loadErr(dir, types.ErrCodeConfigCatalog, "catalogue path is not a directory", nil)
	}
	return LoadFS(os.DirFS(dir))
}

// document types mirror the YAML files.
type (
	rulesDocument struct {
		Version string           `yaml:"version" validate:"required"`
		Rules   []rules.RuleSpec `yaml:"rules"`
	}

	speciesSection struct {
		Evaluated []types.SpeciesID          `yaml:"evaluated" validate:"required,min=1"`
		NamesTR   map[types.SpeciesID]string `yaml:"namesTR"`
	}

	techniqueSection struct {
		NamesTR map[types.TechniqueID]string `yaml:"namesTR"`
	}

	scoringDocument struct {
		Version       string           `yaml:"version" validate:"required"`
		Species       speciesSection   `yaml:"species"`
		Techniques    techniqueSection `yaml:"techniques"`
		Scoring       scoring.Config   `yaml:"scoring"`
		RuleBonusCaps rules.Caps       `yaml:"ruleBonusCaps"`
		WaterMass     wind.ProxyConfig `yaml:"waterMass"`
		Mode          mode.Config      `yaml:"mode"`
		Composer      ComposerConfig   `yaml:"composer"`
	}

	seasonDocument struct {
		Version string              `yaml:"version" validate:"required"`
		Species scoring.SeasonTable `yaml:"species" validate:"required,dive"`
	}

	locationsDocument struct {
		Version   string           `yaml:"version" validate:"required"`
		Locations []types.Location `yaml:"locations" validate:"required,min=1,dive"`
	}
)

// LoadFS loads and validates the catalogue rooted at fsys.
//
// Steps:
//  1. Read the four documents and hash them in a fixed order.
//  2. Validate the rule catalogue against the embedded JSON Schema.
//  3. Strictly decode every document and run struct validation.
//  4. Compile the rules (unique ids, known categories, no-go only in absolute).
//  5. Enforce cross-document invariants (weights sum to 1, every evaluated
//     species is weighted, locations are unique and well-formed).
func LoadFS(fsys fs.FS) (*Bundle, error) {
	raw := make(map[string][]byte, 4)
	hash, _ := blake2b.New256(nil)
	for _, name := range []string{RulesFile, ScoringFile, SeasonalityFile, LocationsFile} {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, loadErr(name, types.ErrCodeConfigCatalog, "document not readable", err)
		}
		raw[name] = data
		hash.Write([]byte(name))
		hash.Write([]byte{0})
		hash.Write(data)
	}

	if err := validateRulesSchema(raw[RulesFile]); err != nil {
		return nil, err
	}

	validate := validator.New()

	var rd rulesDocument
	if err := decodeStrict(raw[RulesFile], &rd); err != nil {
		return nil, loadErr(RulesFile, types.ErrCodeConfigRule, "decode failed", err)
	}
	compiled, err := rules.Compile(rd.Rules)
	if err != nil {
		return nil, &LoadError{File: RulesFile, Err: err}
	}

	var sd scoringDocument
	if err := decodeStrict(raw[ScoringFile], &sd); err != nil {
		return nil, loadErr(ScoringFile, types.ErrCodeConfigScoring, "decode failed", err)
	}
	if err := validate.Struct(sd); err != nil {
		return nil, loadErr(ScoringFile, types.ErrCodeConfigScoring, "validation failed", err)
	}
	if err := checkScoring(sd); err != nil {
		return nil, loadErr(ScoringFile, types.ErrCodeConfigScoring, "invalid scoring configuration", err)
	}

	var season seasonDocument
	if err := decodeStrict(raw[SeasonalityFile], &season); err != nil {
		return nil, loadErr(SeasonalityFile, types.ErrCodeConfigSeason, "decode failed", err)
	}
	if err := validate.Struct(season); err != nil {
		return nil, loadErr(SeasonalityFile, types.ErrCodeConfigSeason, "validation failed", err)
	}
	if err := checkSeason(season.Species); err != nil {
		return nil, loadErr(SeasonalityFile, types.ErrCodeConfigSeason, "invalid season table", err)
	}

	var ld locationsDocument
	if err := decodeStrict(raw[LocationsFile], &ld); err != nil {
		return nil, loadErr(LocationsFile, types.ErrCodeConfigLocations, "decode failed", err)
	}
	if err := validate.Struct(ld); err != nil {
		return nil, loadErr(LocationsFile, types.ErrCodeConfigLocations, "validation failed", err)
	}
	if err := checkLocations(ld.Locations); err != nil {
		return nil, loadErr(LocationsFile, types.ErrCodeConfigLocations, "invalid locations", err)
	}

	var warnings []string
	for _, r := range compiled {
		if unknown := r.UnknownFields(); len(unknown) > 0 {
			warnings = append(warnings, fmt.Sprintf("rule %s: condition fields never provided: %s", r.ID, strings.Join(unknown, ", ")))
		}
	}

	return &Bundle{
		Versions: Versions{
			Rules:       rd.Version,
			Scoring:     sd.Version,
			Seasonality: season.Version,
			Locations:   ld.Version,
		},
		Digest:         hex.EncodeToString(hash.Sum(nil)),
		Rules:          rules.NewEngine(compiled, sd.RuleBonusCaps, sd.Species.Evaluated),
		RuleSpecs:      rd.Rules,
		Caps:           sd.RuleBonusCaps,
		Scoring:        sd.Scoring,
		Season:         season.Species,
		Mode:           sd.Mode,
		WaterMass:      sd.WaterMass,
		Composer:       sd.Composer,
		Species:        sd.Species.Evaluated,
		SpeciesNames:   sd.Species.NamesTR,
		TechniqueNames: sd.Techniques.NamesTR,
		Locations:      ld.Locations,
		Warnings:       warnings,
	}, nil
}

// decodeStrict rejects unknown keys so typos in the catalogue fail loudly.
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func validateRulesSchema(doc []byte) error {
	schemaData, err := embedded.ReadFile("data/" + RulesSchemaFile)
	if err != nil {
		return loadErr(RulesSchemaFile, types.ErrCodeConfigCatalog, "schema missing", err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(rulesSchemaURL, bytes.NewReader(schemaData)); err != nil {
		return loadErr(RulesSchemaFile, types.ErrCodeConfigCatalog, "schema load failed", err)
	}
	schema, err := c.Compile(rulesSchemaURL)
	if err != nil {
		return loadErr(RulesSchemaFile, types.ErrCodeConfigCatalog, "schema compile failed", err)
	}

	instance, err := yamlToJSONValue(doc)
	if err != nil {
		return loadErr(RulesFile, types.ErrCodeConfigSchema, "document is not JSON-compatible", err)
	}
	if err := schema.Validate(instance); err != nil {
		return loadErr(RulesFile, types.ErrCodeConfigSchema, "schema validation failed", err)
	}
	return nil
}

// yamlToJSONValue converts a YAML document to the generic JSON value tree the
// schema validator expects, keeping numbers as json.Number.
func yamlToJSONValue(doc []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(doc, &v); err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func checkScoring(sd scoringDocument) error {
	for sp, w := range sd.Scoring.Weights {
		if !sp.Valid() {
			return fmt.Errorf("weights: unknown species %q", sp)
		}
		if !w.Balanced() {
			return fmt.Errorf("weights for %s sum to %.3f, want 1.0±%.2f", sp, w.Sum(), scoring.WeightSumTolerance)
		}
	}
	for _, sp := range sd.Species.Evaluated {
		if !sp.Valid() {
			return fmt.Errorf("species.evaluated: unknown species %q", sp)
		}
		if _, ok := sd.Scoring.Weights[sp]; !ok {
			return fmt.Errorf("species %s is evaluated but has no weights", sp)
		}
	}
	for m, techs := range sd.Composer.ModeAvoid {
		if !m.Valid() {
			return fmt.Errorf("composer.modeAvoid: unknown mode %q", m)
		}
		for _, t := range techs {
			if !t.Valid() {
				return fmt.Errorf("composer.modeAvoid.%s: unknown technique %q", m, t)
			}
		}
	}
	for _, t := range sd.Composer.ShelteredExceptions.AllowedTechniques {
		if !t.Valid() {
			return fmt.Errorf("composer.shelteredExceptions: unknown technique %q", t)
		}
	}
	for i, shift := range sd.Scoring.Wind.Shifts {
		if err := checkCardinals(fmt.Sprintf("scoring.wind.shifts[%d]", i), shift.Directions); err != nil {
			return err
		}
	}
	if err := checkCardinals("waterMass.lodosDirections", sd.WaterMass.LodosDirections); err != nil {
		return err
	}
	if err := checkCardinals("waterMass.poyrazDirections", sd.WaterMass.PoyrazDirections); err != nil {
		return err
	}
	if sd.Mode.VeryHighRating < sd.Mode.HighRating {
		return fmt.Errorf("mode.veryHighRating %.2f below highRating %.2f", sd.Mode.VeryHighRating, sd.Mode.HighRating)
	}
	return nil
}

func checkSeason(table scoring.SeasonTable) error {
	for sp, p := range table {
		if !sp.Valid() {
			return fmt.Errorf("unknown species %q", sp)
		}
		seen := make(map[int]string)
		lists := []struct {
			name   string
			months []int
		}{
			{"peak", p.PeakMonths},
			{"shoulder", p.ShoulderMonths},
			{"off", p.OffMonths},
			{"legacyClosed", p.LegacyClosedMonths},
		}
		for _, l := range lists {
			for _, m := range l.months {
				if prev, dup := seen[m]; dup {
					return fmt.Errorf("%s: month %d listed as both %s and %s", sp, m, prev, l.name)
				}
				seen[m] = l.name
			}
		}
	}
	return nil
}

// checkCardinals rejects directions outside the 8-point rose. Matching is
// exact, so lower-case or 16-point names fail.
func checkCardinals(field string, dirs []string) error {
	for _, c := range dirs {
		if !slices.Contains(wind.Cardinals[:], c) {
			return fmt.Errorf("%s: %q is not an 8-point cardinal", field, c)
		}
	}
	return nil
}

func checkLocations(locs []types.Location) error {
	seen := make(map[string]struct{}, len(locs))
	for _, l := range locs {
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("duplicate location id %q", l.ID)
		}
		seen[l.ID] = struct{}{}

		if err := checkCardinals(l.ID+": shelteredFrom", l.ShelteredFrom); err != nil {
			return err
		}
		for _, t := range slices.Concat(l.PrimaryTechniques, l.TechniqueBias) {
			if !t.Valid() {
				return fmt.Errorf("%s: unknown technique %q", l.ID, t)
			}
		}
	}
	return nil
}
