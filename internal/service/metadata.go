package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/iyhunko/magical-emporium/internal/model"
)

// Defaults used when the description carries no marker for a field.
const (
	DefaultPrice    = "Priceless"
	DefaultCategory = "Curiosities"
	DefaultRarity   = "Common"
)

// Rarity tiers, lowest first.
var rarityTiers = []string{"Common", "Uncommon", "Rare", "Epic", "Legendary", "Mythic"}

// Metadata is the structured part of a product derived from its description.
type Metadata struct {
	Name     string
	Price    string
	Category string
	Rarity   string
	Tags     []string
}

var (
	// "- **Price:** 500 Gold Coins", "Rarity: Legendary", "* Tags: a, b",
	// "1. Category: Wands", "## Rarity: Epic"
	markerLine = regexp.MustCompile(`^\s*(?:[-*+]\s+|\d+[.)]\s+|#{1,6}\s+)?(?:\*\*|__|\*|_)?([A-Za-z]+)(?:\*\*|__|\*|_)?\s*:\s*(?:\*\*|__)?\s*(.*?)\s*$`)
	heading    = regexp.MustCompile(`^\s*#{1,6}\s+(.+?)\s*#*\s*$`)
	emphasis   = strings.NewReplacer("**", "", "__", "", "`", "")
	tagSplit   = regexp.MustCompile(`[,;]`)
)

var labelFields = map[string]string{
	"name":     "name",
	"title":    "name",
	"price":    "price",
	"cost":     "price",
	"category": "category",
	"type":     "category",
	"rarity":   "rarity",
	"tags":     "tags",
	"keywords": "tags",
}

// ExtractMetadata reads "Label: value" markers from a generated description.
// Missing markers fall back to defaults; the name falls back to the first
// markdown heading and then to the seed. It never fails.
func ExtractMetadata(description, seed string) Metadata {
	found := map[string]string{}
	firstHeading := ""

	for _, line := range strings.Split(description, "\n") {
		if m := markerLine.FindStringSubmatch(line); m != nil {
			field, ok := labelFields[strings.ToLower(m[1])]
			value := cleanValue(m[2])
			if ok && value != "" {
				if _, seen := found[field]; !seen {
					found[field] = value
				}
				continue
			}
		}
		if firstHeading == "" {
			if m := heading.FindStringSubmatch(line); m != nil {
				firstHeading = cleanValue(m[1])
			}
		}
	}

	meta := Metadata{
		Name:     firstNonEmpty(found["name"], firstHeading, strings.TrimSpace(seed)),
		Price:    firstNonEmpty(found["price"], DefaultPrice),
		Category: firstNonEmpty(found["category"], DefaultCategory),
		Rarity:   canonicalRarity(firstNonEmpty(found["rarity"], DefaultRarity)),
		Tags:     splitTags(found["tags"]),
	}

	meta.Name = truncate(meta.Name, model.MaxNameLength)
	meta.Price = truncate(meta.Price, model.MaxPriceLength)
	meta.Category = truncate(meta.Category, model.MaxCategoryLength)
	meta.Rarity = truncate(meta.Rarity, model.MaxRarityLength)
	return meta
}

func cleanValue(s string) string {
	return strings.TrimSpace(strings.Trim(emphasis.Replace(s), " .\t\"'*_"))
}

func canonicalRarity(value string) string {
	for _, tier := range rarityTiers {
		if strings.EqualFold(value, tier) {
			return tier
		}
	}
	return value
}

func splitTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}

	seen := map[string]bool{}
	for _, part := range tagSplit.Split(raw, -1) {
		tag := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "#"))
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
		if len(tags) == model.MaxTags {
			break
		}
	}
	return tags
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
