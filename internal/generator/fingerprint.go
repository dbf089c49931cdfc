package generator

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/Nic0Byte/NearYou-v1/internal/models"
)

// Fingerprint computes the content-addressed cache key for a
// (user, poi) pair, the Go port of cache_utils.py's
// generate_cache_key: a 5-year age bucket, lowercase profession,
// sorted/deduped lowercase interests, and lowercase POI name/category,
// MD5-hashed.
func Fingerprint(user models.GenerateUserInput, poi models.GeneratePOIInput) string {
	bucketStart := (int(user.Age) / 5) * 5
	ageRange := fmt.Sprintf("%d-%d", bucketStart, bucketStart+4)

	profession := strings.ToLower(strings.TrimSpace(user.Profession))
	interests := normalizeInterests(user.Interests)
	poiName := strings.ToLower(strings.TrimSpace(poi.Name))
	poiCategory := strings.ToLower(strings.TrimSpace(poi.Category))

	combined := fmt.Sprintf("%s:%s:%s:%s:%s", ageRange, profession, interests, poiName, poiCategory)
	sum := md5.Sum([]byte(combined))
	return hex.EncodeToString(sum[:])
}

// normalizeInterests lowercases, trims, dedupes, and sorts a
// comma-separated interest list, matching cache_utils.py's fuzzy
// matching normalization so equivalent interest sets collide.
func normalizeInterests(raw string) string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.ToLower(strings.TrimSpace(p))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// popularCategories get double the base TTL, verbatim from cache_utils.py.
var popularCategories = map[string]struct{}{
	"ristorante":    {},
	"bar":           {},
	"abbigliamento": {},
	"supermercato":  {},
}

// IsPopularCategory reports whether category qualifies for the
// adaptive (doubled) cache TTL.
func IsPopularCategory(category string) bool {
	_, ok := popularCategories[strings.ToLower(strings.TrimSpace(category))]
	return ok
}
