package intent

import "strings"

// rule binds an intent to the keywords that select it. Rules are evaluated
// in order; the first keyword hit wins, so earlier intents take priority.
type rule struct {
	intent   ServiceIntent
	keywords []string
}

// rules is the declarative keyword table. Keywords are accent-folded
// lowercase; matching is substring-based against the normalized message,
// same vocabulary the web chatbot answered to.
var rules = []rule{
	{ServiceCertification, []string{
		"itse", "certificado", "certificacion", "inspeccion", "defensa civil", "licencia de funcionamiento",
	}},
	{ServiceGrounding, []string{
		"pozo a tierra", "pozo de tierra", "puesta a tierra", "pozo tierra", "aterramiento", "resistividad",
	}},
	{ServiceMaintenance, []string{
		"mantenimiento", "reparacion", "falla electrica", "averia", "corto circuito", "emergencia electrica",
	}},
	{ServiceFireProtection, []string{
		"incendio", "detector de humo", "alarma contra", "extintor", "rociador", "sistema contra",
	}},
	{ServicePanelDesign, []string{
		"tablero", "diseno de tablero", "panel electrico", "distribucion electrica", "diagrama unifilar",
	}},
	{ServiceSupplies, []string{
		"suministro", "materiales", "cable", "interruptor", "tomacorriente", "luminaria", "llave termica",
	}},
}

// accentFolder collapses Spanish diacritics so "inspección" and
// "inspeccion" classify the same.
var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

// Normalize lowercases and accent-folds free text for keyword matching.
func Normalize(text string) string {
	return strings.ToLower(accentFolder.Replace(text))
}

// Classify resolves a free-text message to a ServiceIntent. An explicit
// hint other than unknown always wins over keyword matching. No match
// yields ServiceUnknown, which is a valid outcome, not an error.
func Classify(text string, hint ServiceIntent) ServiceIntent {
	if hint != "" && hint != ServiceUnknown && hint.Known() {
		return hint
	}

	normalized := Normalize(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(normalized, kw) {
				return r.intent
			}
		}
	}
	return ServiceUnknown
}
