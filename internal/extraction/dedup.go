// internal/extraction/dedup.go
package extraction

import (
	"fmt"

	"transcript-workers/internal/models"
)

// DedupAdditional stores additional mentions by type. The first occurrence of
// a type keeps the bare key, later ones get "{type}-N". Values are never
// overwritten and first-seen key order is preserved.
func DedupAdditional(mentions []models.RawEntityMention) *models.AdditionalEntities {
	out := models.NewAdditionalEntities()
	seen := make(map[string]int, len(mentions))

	for _, m := range mentions {
		seen[m.Type]++
		n := seen[m.Type]

		key := m.Type
		if n > 1 {
			key = fmt.Sprintf("%s-%d", m.Type, n)
		}
		// A literal entity type may already own the suffixed key.
		for out.Has(key) {
			n++
			key = fmt.Sprintf("%s-%d", m.Type, n)
		}
		seen[m.Type] = n

		out.Set(key, m.Text)
	}

	return out
}
