package report

import (
	"encoding/json"
	"strings"

	"github.com/runlens/runlens/internal/archive"
	"github.com/rs/zerolog/log"
)

const (
	// SidecarSuffix marks archive entries that carry structured metadata
	// about another attachment, keyed by the entry name minus the suffix.
	SidecarSuffix = ".metadata.json"

	// MetadataAttachmentType is the content-type that marks an attempt
	// attachment as a structured-metadata pointer.
	MetadataAttachmentType = "application/vnd.runlens.metadata+json"
)

type sidecarEnvelope struct {
	Type string       `json:"type"`
	Data *sidecarData `json:"data"`
}

type sidecarData struct {
	Epic            string      `json:"epic"`
	Labels          []Label     `json:"labels"`
	Parameters      []Parameter `json:"parameters"`
	Description     string      `json:"description"`
	DescriptionHTML string      `json:"descriptionHtml"`
}

type sidecarTable map[string]*sidecarData

// scanSidecars builds the content-hash-keyed metadata lookup in one pass
// over the archive. Sidecar metadata is enrichment, not required for
// correctness: malformed entries are skipped with a warning so cosmetic
// corruption never turns into an upload failure.
func scanSidecars(a *archive.Archive) sidecarTable {
	table := make(sidecarTable)

	for _, name := range a.Names() {
		if !strings.HasSuffix(name, SidecarSuffix) {
			continue
		}

		data, err := a.Read(name)
		if err != nil {
			log.Warn().Err(err).Str("entry", name).Msg("Failed to read sidecar metadata entry")
			continue
		}

		var envelope sidecarEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			log.Warn().Err(err).Str("entry", name).Msg("Skipping malformed sidecar metadata")
			continue
		}
		if envelope.Type != "metadata" || envelope.Data == nil {
			continue
		}

		key := strings.TrimSuffix(name, SidecarSuffix)
		table[key] = envelope.Data
	}

	return table
}

// mergeSidecarMetadata attaches registered sidecar data to a record via
// the metadata attachments of its attempts. Labels and parameters
// concatenate across all matching attachments; epic and descriptions are
// first-non-empty-wins.
func mergeSidecarMetadata(rec *TestRecord, table sidecarTable) {
	if len(table) == 0 {
		return
	}

	for _, att := range rec.Attempts {
		for _, a := range att.Attachments {
			if a.ContentType != MetadataAttachmentType || a.Path == "" {
				continue
			}
			data, ok := table[strings.TrimSuffix(a.Path, SidecarSuffix)]
			if !ok {
				continue
			}

			rec.Metadata.Labels = append(rec.Metadata.Labels, data.Labels...)
			rec.Metadata.Parameters = append(rec.Metadata.Parameters, data.Parameters...)
			if rec.Metadata.Epic == "" {
				rec.Metadata.Epic = data.Epic
			}
			if rec.Metadata.Description == "" {
				rec.Metadata.Description = data.Description
			}
			if rec.Metadata.DescriptionHTML == "" {
				rec.Metadata.DescriptionHTML = data.DescriptionHTML
			}
		}
	}
}
