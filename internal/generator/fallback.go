package generator

import (
	"fmt"
	"strings"
)

// fallbackTemplates is the fixed category-keyed table consulted on LLM
// failure, a literal port of generator_service.py's _get_fallback_message.
var fallbackTemplates = map[string]string{
	"ristorante":    "Sei vicino a %s! Un ottimo posto per una pausa pranzo gustosa.",
	"bar":           "%s è a pochi passi! Che ne dici di un ottimo caffè?",
	"abbigliamento": "Dai un'occhiata alle offerte di %s proprio qui vicino!",
	"supermercato":  "%s è qui vicino, perfetto per fare la spesa velocemente.",
}

const defaultFallbackTemplate = "Sei vicino a %s! Fermati a dare un'occhiata."

// fallbackMessage renders the deterministic fallback for a POI, used
// only on LLM failure. Its result is never cached (invariant 8).
func fallbackMessage(shopName, category string) string {
	tmpl, ok := fallbackTemplates[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		tmpl = defaultFallbackTemplate
	}
	return fmt.Sprintf(tmpl, shopName)
}
