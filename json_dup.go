package skema

import (
	"github.com/reoring/skema/i18n"
	"github.com/reoring/skema/internal/engine"
)

// duplicateKeyIssue reports the first object key repeated within one JSON
// object. Decoders keep the last value silently, so such documents are
// rejected before validation.
func duplicateKeyIssue(data []byte) *Issue {
	d, err := engine.FirstDuplicateKey(data)
	if err != nil || d == nil {
		return nil
	}
	return &Issue{
		Code:    CodeDuplicateKey,
		Path:    d.Path,
		Message: i18n.T("duplicate_key", map[string]string{"key": d.Key}),
	}
}
