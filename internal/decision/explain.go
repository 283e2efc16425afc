package decision

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"fishcast/internal/catalog"
	"fishcast/internal/types"
	"fishcast/internal/wind"
)

// Presentation icons. Classification never feeds back into the decision.
const (
	IconWarning  = "warning"
	IconWind     = "wind"
	IconPressure = "pressure"
	IconFish     = "fish"
	IconShelter  = "shelter"
	IconCurrent  = "current"
	IconClock    = "clock"
	IconInfo     = "info"
)

// iconKeywords is checked in order; the first keyword found wins.
var iconKeywords = []struct {
	icon     string
	keywords []string
}{
	{IconWarning, []string{"tehlike", "fırtına", "güvenli değil", "yasak"}},
	{IconShelter, []string{"korunaklı", "rüzgar altı"}},
	{IconCurrent, []string{"su kütlesi", "akıntı"}},
	{IconPressure, []string{"basınç"}},
	{IconWind, []string{"rüzgar", "poyraz", "lodos", "hafif"}},
	{IconFish, []string{"pelajik", "göç", "sürü", "balık"}},
	{IconClock, []string{"şafak", "gece", "akşam", "sabah", "zaman", "saat"}},
}

// ClassifyIcon maps an explanation fragment to a presentation icon by
// keyword.
func ClassifyIcon(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range iconKeywords {
		for _, k := range entry.keywords {
			if strings.Contains(lower, k) {
				return entry.icon
			}
		}
	}
	return IconInfo
}

// Structural explanation fragments.
const (
	whyPelagic    = "Pelajik koridorda — göçmen türler geçişte"
	whyLodosMass  = "Lodos su kütlesi etkili — Marmara suyu boğazda"
	whyPoyrazMass = "Poyraz su kütlesi etkili — Karadeniz suyu boğazda"
)

// explanations builds the why list for a recommended location.
//
// Order: top rule messages, pelagic corridor, water-mass direction, shelter
// status, light wind. Duplicates are dropped and the list is capped.
func explanations(b *catalog.Bundle, ev locationEval) []types.Explanation {
	cfg := b.Composer
	sc := ev.situation

	var texts []string
	add := func(s string) {
		if s != "" && !slices.Contains(texts, s) {
			texts = append(texts, s)
		}
	}

	for i, m := range ev.result.Messages {
		if i >= cfg.MaxRuleExplanations {
			break
		}
		add(m)
	}
	if ev.location.PelagicCorridor {
		add(whyPelagic)
	}
	if sc.WaterMassStrength > 0 {
		switch sc.WaterMass {
		case types.WaterMassLodos:
			add(whyLodosMass)
		case types.WaterMassPoyraz:
			add(whyPoyrazMass)
		}
	}
	if slices.Contains(ev.location.ShelteredFrom, sc.WindCardinal) {
		add(fmt.Sprintf("%s %s rüzgarına korunaklı", ev.location.Name, wind.NameTR(sc.WindCardinal)))
	}
	if sc.WindSpeedKmh <= cfg.LightWindKmh {
		add(capitalize(wind.NameTR(sc.WindCardinal)) + " hafif — uygun koşullar")
	}

	if len(texts) > cfg.MaxExplanations {
		texts = texts[:cfg.MaxExplanations]
	}
	out := make([]types.Explanation, len(texts))
	for i, t := range texts {
		out[i] = types.Explanation{Text: t, Icon: ClassifyIcon(t)}
	}
	return out
}

// shelteredExceptions lists, in location id order, the locations whose
// sheltered-from cardinals include the current wind.
func shelteredExceptions(b *catalog.Bundle, cardinal string) []types.ShelteredException {
	cfg := b.Composer.ShelteredExceptions
	norm := wind.Normalize8(cardinal)

	locs := slices.Clone(b.Locations)
	slices.SortFunc(locs, func(a, c types.Location) int { return strings.Compare(a.ID, c.ID) })

	names := make([]string, len(cfg.AllowedTechniques))
	for i, t := range cfg.AllowedTechniques {
		names[i] = strings.ToUpper(string(t))
	}

	out := []types.ShelteredException{}
	for _, l := range locs {
		if !slices.Contains(l.ShelteredFrom, norm) {
			continue
		}
		out = append(out, types.ShelteredException{
			LocationID:        l.ID,
			Name:              l.Name,
			AllowedTechniques: slices.Clone(cfg.AllowedTechniques),
			WarningLevel:      cfg.WarningLevel,
			Message:           fmt.Sprintf("%s korunaklı — sadece %s ile dikkatli av.", l.Name, strings.Join(names, "/")),
		})
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
