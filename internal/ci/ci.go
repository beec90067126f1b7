package ci

import (
	"regexp"
	"strings"
)

// UnknownBranch is the sentinel used when no branch could be determined.
const UnknownBranch = "unknown"

const maxBranchLen = 60

// branchEnvVars is the ordered list of CI-provided variables consulted
// when no explicit branch was supplied. Head-ref style names come first
// so pull-request builds resolve to the source branch.
var branchEnvVars = []string{
	"GITHUB_HEAD_REF",
	"GITHUB_REF_NAME",
	"BRANCH",
	"GIT_BRANCH",
	"CI_COMMIT_REF_NAME",
	"BUILDKITE_BRANCH",
	"CIRCLE_BRANCH",
}

var (
	ticketRe       = regexp.MustCompile(`^[A-Z]+-\d+`)
	branchCharRe   = regexp.MustCompile(`[^A-Za-z0-9\-_/]`)
	prNumberTailRe = regexp.MustCompile(`(\d+)/?$`)
)

// DeriveBranch resolves the branch label for a run using a strict
// priority chain, short-circuiting at the first match:
// explicit non-sentinel value, CI environment variables, a ticket token
// or prefix from the PR title, the PR URL's trailing number, and finally
// the supplied value as-is (which may be the sentinel).
func DeriveBranch(explicit string, env map[string]string, prTitle, prURL string) string {
	if explicit != "" && explicit != UnknownBranch {
		return SanitizeBranch(explicit)
	}

	for _, name := range branchEnvVars {
		if v := strings.TrimSpace(env[name]); v != "" {
			return SanitizeBranch(v)
		}
	}

	if prTitle != "" {
		if ticket := ticketRe.FindString(prTitle); ticket != "" {
			return SanitizeBranch(ticket)
		}
		if idx := strings.Index(prTitle, ":"); idx > 0 {
			if prefix := strings.TrimSpace(prTitle[:idx]); prefix != "" {
				return SanitizeBranch(prefix)
			}
		}
	}

	if prURL != "" {
		if m := prNumberTailRe.FindStringSubmatch(prURL); m != nil {
			return SanitizeBranch("pr-" + m[1])
		}
	}

	return explicit
}

// SanitizeBranch replaces characters outside [A-Za-z0-9-_/] with a hyphen
// and truncates over-long values to 60 characters plus an ellipsis.
func SanitizeBranch(branch string) string {
	branch = branchCharRe.ReplaceAllString(branch, "-")
	if len(branch) > maxBranchLen {
		branch = branch[:maxBranchLen] + "..."
	}
	return branch
}

// environmentSynonyms maps common shorthand labels to canonical names.
var environmentSynonyms = map[string]string{
	"preview": "development",
	"dev":     "development",
	"prod":    "production",
	"stage":   "staging",
	"test":    "testing",
}

// NormalizeEnvironment lower-cases the supplied label and maps it through
// the synonym table. Labels with no synonym entry pass through unchanged.
func NormalizeEnvironment(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if canonical, ok := environmentSynonyms[label]; ok {
		return canonical
	}
	return label
}
