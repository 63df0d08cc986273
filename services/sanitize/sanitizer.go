// Package sanitize is the second, independent privacy enforcement
// layer. Whatever the gate projected, nothing outside the allowed
// field set leaves the trust boundary.
package sanitize

import (
	"strings"

	"github.com/junction-boxers/fleetgate/models"
)

// Apply strips every non-allowed field from a retrieval result,
// record by record. Aggregate documents pass through unchanged,
// wrapped as a single-element sequence for uniform downstream
// handling; they carry no per-entity PII by construction.
//
// Apply is idempotent: sanitizing an already-sanitized record set
// changes nothing.
func Apply(result *models.RetrievalResult, taxonomy models.FieldTaxonomy) *models.SanitizedResult {
	if result == nil {
		return &models.SanitizedResult{Records: []map[string]interface{}{}}
	}

	if result.IsAggregate() {
		return &models.SanitizedResult{
			Records: []map[string]interface{}{result.Aggregate},
		}
	}

	records := make([]map[string]interface{}, 0, len(result.Records))
	for _, record := range result.Records {
		records = append(records, sanitizeDoc("", record, taxonomy))
	}

	return &models.SanitizedResult{Records: records}
}

// sanitizeDoc copies only allowed fields at one nesting level;
// everything else is dropped silently. Absent fields are not an error.
// A field allowed by its exact (dotted) name admits its whole value; a
// field that is only a prefix of deeper allowed paths admits a
// filtered subdocument.
func sanitizeDoc(prefix string, doc map[string]interface{}, taxonomy models.FieldTaxonomy) map[string]interface{} {
	clean := make(map[string]interface{}, len(doc))
	for field, value := range doc {
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}

		if exactlyAllowed(path, taxonomy) {
			clean[field] = value
			continue
		}

		if prefixAllowed(path, taxonomy) {
			if nested, ok := value.(map[string]interface{}); ok {
				clean[field] = sanitizeDoc(path, nested, taxonomy)
			}
			// A non-document value under a bare prefix has no allowed
			// leaf to expose; drop it.
		}
	}
	return clean
}

// exactlyAllowed reports whether the dotted path is itself an allowed
// field.
func exactlyAllowed(path string, taxonomy models.FieldTaxonomy) bool {
	for _, f := range taxonomy.AllowedFields {
		if f == path {
			return true
		}
	}
	return false
}

// prefixAllowed reports whether the dotted path leads to deeper
// allowed fields.
func prefixAllowed(path string, taxonomy models.FieldTaxonomy) bool {
	for _, f := range taxonomy.AllowedFields {
		if strings.HasPrefix(f, path+".") {
			return true
		}
	}
	return false
}
