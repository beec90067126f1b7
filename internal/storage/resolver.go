package storage

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/runlens/runlens/internal/archive"
	"github.com/runlens/runlens/internal/report"
)

// ResolveScreenshots uploads every screenshot still referenced by an
// archive-relative path and rewrites the references to signed external
// URLs. This is the single sanctioned post-extraction mutation of the
// record set; it operates on the caller-owned slice in place.
//
// Blobs that cannot be read or stored are left referencing their archive
// path and logged; a missing screenshot never fails the ingestion.
func ResolveScreenshots(ctx context.Context, records []report.TestRecord, assets *archive.Archive, store Store, signer *URLSigner) {
	// The same blob is commonly referenced from several attempts; upload
	// each archive path once.
	resolved := make(map[string]string)

	resolve := func(ref string) string {
		if isExternal(ref) {
			return ref
		}
		if u, ok := resolved[ref]; ok {
			return u
		}

		data, err := assets.Read(ref)
		if err != nil {
			log.Warn().Err(err).Str("path", ref).Msg("Screenshot missing from archive, keeping raw reference")
			resolved[ref] = ref
			return ref
		}

		key, err := store.Save(ctx, ref, data, "")
		if err != nil {
			log.Warn().Err(err).Str("path", ref).Msg("Failed to store screenshot, keeping raw reference")
			resolved[ref] = ref
			return ref
		}

		u, err := signer.SignedURL(key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to sign screenshot URL, keeping raw reference")
			resolved[ref] = ref
			return ref
		}

		resolved[ref] = u
		return u
	}

	for i := range records {
		for j, ref := range records[i].Screenshots {
			records[i].Screenshots[j] = resolve(ref)
		}
		for a := range records[i].Attempts {
			for j, ref := range records[i].Attempts[a].Screenshots {
				records[i].Attempts[a].Screenshots[j] = resolve(ref)
			}
		}
	}
}

func isExternal(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
