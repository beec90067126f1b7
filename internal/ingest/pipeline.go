package ingest

import (
	"github.com/rs/zerolog/log"
	"github.com/runlens/runlens/internal/archive"
	"github.com/runlens/runlens/internal/ci"
	"github.com/runlens/runlens/internal/fingerprint"
	"github.com/runlens/runlens/internal/report"
	"github.com/runlens/runlens/internal/timing"
)

// PipelineResult is the full outcome of one ingestion: the canonical
// record set plus everything derived from it.
type PipelineResult struct {
	Records     []report.TestRecord
	Meta        report.RunMetadata
	Stats       report.RunStats
	DurationMS  int64
	Fingerprint string

	// Assets reads screenshot bytes still referenced by archive paths.
	Assets *archive.Archive
}

// RunPipeline executes the ingestion core on an uploaded archive:
// format detection, extraction, metadata derivation, fingerprinting and
// duration computation. It performs no I/O beyond the archive bytes and
// persists nothing, so an abort at any point is always safe.
func RunPipeline(archiveBytes []byte, meta *IngestionMetadata) (*PipelineResult, error) {
	a, err := archive.Open(archiveBytes)
	if err != nil {
		return nil, &report.ReportFormatError{Reason: "upload is not a zip archive"}
	}

	extraction, err := report.Extract(a)
	if err != nil {
		return nil, err
	}

	result := &PipelineResult{
		Records: extraction.Records,
		Assets:  extraction.Assets,
	}

	result.Meta = deriveRunMetadata(meta, extraction)

	if meta.Fingerprint != "" {
		// A precomputed fingerprint is used verbatim; re-deriving would
		// defeat the client-side duplicate probe.
		result.Fingerprint = meta.Fingerprint
	} else {
		result.Fingerprint = fingerprint.Calculate(result.Records)
	}

	if wallClock, ok := timing.WallClock(timing.FromRecords(result.Records)); ok {
		result.DurationMS = wallClock
	} else {
		log.Warn().
			Int("records", len(result.Records)).
			Msg("No usable start-time data, falling back to serial-sum duration")
		result.DurationMS = report.SerialDurationMS(result.Records)
	}

	result.Stats = report.ComputeStats(result.Records)
	result.Stats.Duration = report.FormatDuration(result.DurationMS)

	return result, nil
}

// deriveRunMetadata combines caller-supplied context with CI provenance
// found in the archive. Explicit caller values always win over detection.
func deriveRunMetadata(meta *IngestionMetadata, extraction *report.ExtractionResult) report.RunMetadata {
	out := report.RunMetadata{
		Commit:    meta.Commit,
		CommitURL: meta.CommitURL,
		BuildURL:  meta.BuildURL,
		PRTitle:   meta.PRTitle,
		PRURL:     meta.PRURL,
		StartTime: extraction.StartTime,
	}

	if extraction.CI != nil {
		out.CIEnv = extraction.CI.Env
		if out.Commit == "" {
			out.Commit = extraction.CI.Commit
		}
		if out.CommitURL == "" {
			out.CommitURL = extraction.CI.CommitURL
		}
		if out.BuildURL == "" {
			out.BuildURL = extraction.CI.BuildURL
		}
		if out.PRTitle == "" {
			out.PRTitle = extraction.CI.PRTitle
		}
		if out.PRURL == "" {
			out.PRURL = extraction.CI.PRURL
		}
	}

	branch := meta.Branch
	if branch == "" {
		branch = ci.UnknownBranch
	}
	out.Branch = ci.DeriveBranch(branch, out.CIEnv, out.PRTitle, out.PRURL)

	out.Environment = ci.NormalizeEnvironment(meta.Environment)

	return out
}
