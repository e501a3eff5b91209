package resolve

import (
	"regexp"
	"strings"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/normalizer"
)

// Mention is one extracted entity reference from article text.
type Mention struct {
	Name       string
	Type       string
	Confidence float64
}

// Corporate designators that mark a capitalized phrase as an organization.
// Matching is done on the trailing token of the phrase.
var corporateSuffixes = map[string]bool{
	"ltd":      true,
	"limited":  true,
	"llc":      true,
	"llp":      true,
	"lp":       true,
	"inc":      true,
	"corp":     true,
	"plc":      true,
	"sa":       true,
	"se":       true,
	"spc":      true,
	"sezc":     true,
	"fund":     true,
	"funds":    true,
	"trust":    true,
	"holdings": true,
	"group":    true,
	"partners": true,
	"capital":  true,
	"bank":     true,
}

// Registered office and fiduciary services providers active in the Cayman
// Islands. Mentions of these firms get their own entity type so review and
// stats can separate service providers from the funds they administer.
var registeredOfficeProviders = map[string]bool{
	"maples":         true,
	"maples and calder": true,
	"walkers":        true,
	"ogier":          true,
	"campbells":      true,
	"harneys":        true,
	"carey olsen":    true,
	"appleby":        true,
	"conyers":        true,
	"intertrust":     true,
	"vistra":         true,
	"trident trust":  true,
	"stuarts":        true,
}

// Honorifics marking a person mention.
var personHonorifics = regexp.MustCompile(
	`\b(?:Mr|Mrs|Ms|Dr|Justice|Judge)\.?\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2})`)

// capitalizedPhrase matches runs of capitalized words (with optional
// connectives) that form candidate organization names.
var capitalizedPhrase = regexp.MustCompile(
	`\b([A-Z][A-Za-z&'.-]*(?:\s+(?:[A-Z][A-Za-z&'.-]*|and|of|the|&)){0,6})`)

// Mention confidence levels by extraction path.
const (
	confidenceProvider  = 0.95
	confidenceSuffix    = 0.9
	confidenceHonorific = 0.8
)

// ExtractMentions pulls entity mentions out of an article's title and
// content. Extraction is heuristic: capitalized phrases ending in a
// corporate designator become organizations, known fiduciary firms become
// registered office providers, and honorific-prefixed names become people.
// Results are deduplicated by normalized name, first occurrence wins.
func ExtractMentions(title, content string) []Mention {
	text := title + "\n" + content

	var mentions []Mention
	seen := make(map[string]bool)

	add := func(name, entityType string, confidence float64) {
		name = strings.TrimSpace(strings.Trim(name, ".,;:"))
		if name == "" {
			return
		}
		key := normalizer.NormalizeTitle(name)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		mentions = append(mentions, Mention{
			Name:       name,
			Type:       entityType,
			Confidence: confidence,
		})
	}

	for _, m := range capitalizedPhrase.FindAllString(text, -1) {
		phrase := strings.TrimSpace(m)
		norm := normalizer.NormalizeTitle(phrase)

		if registeredOfficeProviders[norm] {
			add(phrase, entity.EntityTypeRegisteredOfficeProvider, confidenceProvider)
			continue
		}

		words := strings.Fields(norm)
		if len(words) >= 2 && corporateSuffixes[words[len(words)-1]] {
			add(phrase, entity.EntityTypeOrganization, confidenceSuffix)
		}
	}

	for _, m := range personHonorifics.FindAllStringSubmatch(text, -1) {
		add(m[1], entity.EntityTypePerson, confidenceHonorific)
	}

	return mentions
}
