package compose

import "strings"

// DefaultLevel is sent when probability or impact is missing.
const DefaultLevel = "Bajo"

var riskLevels = map[[2]string]string{
	{"despreciable", "despreciable"}:   "Bajo",
	{"despreciable", "limitado"}:       "Bajo",
	{"despreciable", "significativo"}:  "Medio",
	{"despreciable", "maximo"}:         "Medio",
	{"limitado", "despreciable"}:       "Bajo",
	{"limitado", "limitado"}:           "Medio",
	{"limitado", "significativo"}:      "Medio",
	{"limitado", "maximo"}:             "Alto",
	{"significativo", "despreciable"}:  "Medio",
	{"significativo", "limitado"}:      "Medio",
	{"significativo", "significativo"}: "Alto",
	{"significativo", "maximo"}:        "Alto",
	{"maximo", "despreciable"}:         "Medio",
	{"maximo", "limitado"}:             "Alto",
	{"maximo", "significativo"}:        "Alto",
	{"maximo", "maximo"}:               "Muy Alto",
}

// RiskLevel maps probability × impact to a level. Inputs may be option ids
// ("maximo") or display names ("Máximo"). Unknown pairs yield "".
func RiskLevel(probability, impact string) string {
	return riskLevels[[2]string{normalizeLevel(probability), normalizeLevel(impact)}]
}

func normalizeLevel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u").Replace(s)
}
