package domain

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EncodeContributorIDs renders a party id set as the jsonb value stored on
// catalog/section rows. Ids are sorted so equal sets encode identically.
func EncodeContributorIDs(ids []uuid.UUID) datatypes.JSON {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != uuid.Nil {
			strs = append(strs, id.String())
		}
	}
	sort.Strings(strs)
	b, err := json.Marshal(strs)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}

// DecodeContributorIDs parses a stored contributor_ids column. Malformed
// entries are skipped rather than surfaced; the column is derived state
// and is rewritten on the next reaggregation anyway.
func DecodeContributorIDs(raw datatypes.JSON) []uuid.UUID {
	if len(raw) == 0 {
		return nil
	}
	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return nil
	}
	out := make([]uuid.UUID, 0, len(strs))
	for _, s := range strs {
		id, err := uuid.Parse(s)
		if err == nil && id != uuid.Nil {
			out = append(out, id)
		}
	}
	return out
}
