package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/runlens/runlens/internal/report"
)

// projection is the semantically meaningful subset of a test record.
// Field order is fixed so the serialization is deterministic.
type projection struct {
	File   string `json:"file"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Calculate produces the content fingerprint of a run: a SHA-256 over the
// deterministic serialization of each record's (file, name, status)
// triplet, sorted by file and name. Input order, binary payloads,
// durations, and run-level metadata never influence the digest; flipping
// any single record's status does.
func Calculate(records []report.TestRecord) string {
	projected := make([]projection, 0, len(records))
	for _, rec := range records {
		projected = append(projected, projection{
			File:   rec.File,
			Name:   rec.Name,
			Status: string(rec.Status),
		})
	}

	sort.Slice(projected, func(i, j int) bool {
		if projected[i].File != projected[j].File {
			return projected[i].File < projected[j].File
		}
		if projected[i].Name != projected[j].Name {
			return projected[i].Name < projected[j].Name
		}
		// The same test can appear once per runner project with different
		// statuses; without this tie-break the digest would depend on
		// input order.
		return projected[i].Status < projected[j].Status
	})

	// Struct marshaling preserves field order, so the serialization is
	// stable without relying on map iteration order.
	serialized, err := json.Marshal(projected)
	if err != nil {
		// A slice of plain string structs cannot fail to marshal.
		panic(err)
	}

	digest := sha256.Sum256(serialized)
	return hex.EncodeToString(digest[:])
}

// Valid reports whether s looks like a fingerprint produced by Calculate:
// 64 lowercase hex characters.
func Valid(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
