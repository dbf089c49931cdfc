package query

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
)

// CacheKey builds the `query:<type>:md5(sorted-JSON(params))` key
// spec.md §4.7 names. encoding/json marshals map keys in sorted
// order, so a plain map round-trip is the canonical-JSON step.
func CacheKey(queryType string, params map[string]any) string {
	raw, _ := json.Marshal(params)
	sum := md5.Sum(raw)
	return fmt.Sprintf("query:%s:%x", queryType, sum)
}
