package dialogue

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tesla-electricidad/intake-engine/internal/intent"
)

// ---------- package-level compiled regexes ----------

var (
	areaRE  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:m2|m²|mts2|metros cuadrados|metros)`)
	rucRE   = regexp.MustCompile(`(?:^|[^0-9])((?:10|20)\d{9})(?:[^0-9]|$)`)
	phoneRE = regexp.MustCompile(`(?:\+?51\s?)?9\d{8}\b`)
	nameRE  = regexp.MustCompile(`(?:mi nombre es|me llamo|soy)\s+([a-zA-ZáéíóúñÁÉÍÓÚÑ]+(?:\s+[a-zA-ZáéíóúñÁÉÍÓÚÑ]+){0,2})`)
	dateRE  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	timeRE  = regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)

	restartRE  = regexp.MustCompile(`\b(reiniciar|empezar de nuevo|comenzar de nuevo|restart)\b`)
	locationRE = regexp.MustCompile(`(?:estamos en|ubicado en|ubicada en|me encuentro en|distrito de)\s+([a-záéíóúñ]+(?:\s+[a-záéíóúñ]+)?)`)
)

// businessTypePatterns maps local business vocabulary to the catalog's
// multiplier keys. Ordered by specificity.
var businessTypePatterns = []struct {
	pattern      string
	businessType string
}{
	{"restaurante", "commercial"},
	{"bar", "commercial"},
	{"bodega", "commercial"},
	{"tienda", "commercial"},
	{"comercio", "commercial"},
	{"comercial", "commercial"},
	{"hotel", "commercial"},
	{"hostal", "commercial"},
	{"industria", "industrial"},
	{"fabrica", "industrial"},
	{"planta", "industrial"},
	{"taller", "industrial"},
	{"almacen", "industrial"},
	{"oficina", "office"},
	{"consultorio", "office"},
	{"estudio", "office"},
	{"casa", "residential"},
	{"vivienda", "residential"},
	{"departamento", "residential"},
	{"residencial", "residential"},
}

// isRestart reports whether the visitor asked to start over.
func isRestart(message string) bool {
	return restartRE.MatchString(intent.Normalize(message))
}

// extractArea pulls a square-meter figure out of free text.
func extractArea(message string) (float64, bool) {
	m := areaRE.FindStringSubmatch(intent.Normalize(message))
	if m == nil {
		return 0, false
	}
	raw := strings.ReplaceAll(m[1], ",", ".")
	area, err := strconv.ParseFloat(raw, 64)
	if err != nil || area <= 0 {
		return 0, false
	}
	return area, true
}

// extractBusinessType maps business vocabulary in the message to a
// multiplier key.
func extractBusinessType(message string) (string, bool) {
	normalized := intent.Normalize(message)
	for _, p := range businessTypePatterns {
		if strings.Contains(normalized, p.pattern) {
			return p.businessType, true
		}
	}
	return "", false
}

// extractTaxID finds an 11-digit RUC. Company RUCs start with 10 or 20,
// which keeps phone numbers from being mistaken for one.
func extractTaxID(message string) (string, bool) {
	// Strip separators people type inside the number itself.
	compact := strings.NewReplacer(".", "", "-", "").Replace(message)
	if m := rucRE.FindStringSubmatch(compact); m != nil {
		return m[1], true
	}
	return "", false
}

// extractPhone finds a Peruvian mobile number, normalized to +51 form.
func extractPhone(message string) (string, bool) {
	m := phoneRE.FindString(message)
	if m == "" {
		return "", false
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, m)
	if len(digits) == 9 {
		digits = "51" + digits
	}
	return "+" + digits, true
}

// extractName pulls a self-introduced name out of the message.
func extractName(message string) (string, bool) {
	m := nameRE.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// extractLocation pulls a district or neighborhood out of phrases like
// "estamos en san isidro". Best effort only.
func extractLocation(message string) (string, bool) {
	m := locationRE.FindStringSubmatch(intent.Normalize(message))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// extractVisit finds a concrete date and time request in the message.
func extractVisit(message string) (date, timeOfDay string, ok bool) {
	d := dateRE.FindStringSubmatch(message)
	t := timeRE.FindStringSubmatch(message)
	if d == nil || t == nil {
		return "", "", false
	}
	timeOfDay = t[1]
	if len(timeOfDay) == 4 {
		timeOfDay = "0" + timeOfDay
	}
	return d[1], timeOfDay, true
}
