package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateSKU construit un SKU au format CAT-TTTTTT-RRR :
// préfixe catégorie (3 lettres max), 6 derniers chiffres du timestamp,
// 3 caractères aléatoires
func GenerateSKU(category string) string {
	prefix := skuPrefix(category)
	ts := time.Now().Unix() % 1000000
	rand := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:3]
	return fmt.Sprintf("%s-%06d-%s", prefix, ts, rand)
}

func skuPrefix(category string) string {
	cleaned := make([]rune, 0, 3)
	for _, r := range strings.ToUpper(category) {
		if r >= 'A' && r <= 'Z' {
			cleaned = append(cleaned, r)
			if len(cleaned) == 3 {
				break
			}
		}
	}
	if len(cleaned) == 0 {
		return "PRD"
	}
	return string(cleaned)
}
