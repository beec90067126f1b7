package ci

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveBranch_ExplicitWins(t *testing.T) {
	env := map[string]string{"GITHUB_HEAD_REF": "feature/x"}
	got := DeriveBranch("my-branch", env, "WS-1: title", "https://github.com/org/repo/pull/42")
	require.Equal(t, "my-branch", got)
}

func TestDeriveBranch_UnknownSentinelFallsThrough(t *testing.T) {
	env := map[string]string{"GITHUB_HEAD_REF": "feature/x"}
	require.Equal(t, "feature/x", DeriveBranch(UnknownBranch, env, "", ""))
}

func TestDeriveBranch_EnvVarPriority(t *testing.T) {
	env := map[string]string{
		"GITHUB_REF_NAME": "main",
		"GITHUB_HEAD_REF": "feature/login",
	}
	// Head-ref style names win so PR builds resolve to the source branch.
	require.Equal(t, "feature/login", DeriveBranch("", env, "", ""))

	delete(env, "GITHUB_HEAD_REF")
	require.Equal(t, "main", DeriveBranch("", env, "", ""))
}

func TestDeriveBranch_TicketFromPRTitle(t *testing.T) {
	require.Equal(t, "WS-2938", DeriveBranch("", nil, "WS-2938: Fix something", ""))
}

func TestDeriveBranch_PreColonPRTitle(t *testing.T) {
	require.Equal(t, "hotfix", DeriveBranch("", nil, "hotfix: patch the cart total", ""))
}

func TestDeriveBranch_PRURLNumber(t *testing.T) {
	require.Equal(t, "pr-42", DeriveBranch("", nil, "", "https://github.com/org/repo/pull/42"))
	require.Equal(t, "pr-42", DeriveBranch("", nil, "", "https://github.com/org/repo/pull/42/"))
}

func TestDeriveBranch_FallsBackToExplicit(t *testing.T) {
	require.Equal(t, UnknownBranch, DeriveBranch(UnknownBranch, nil, "", ""))
	require.Equal(t, "", DeriveBranch("", nil, "no separator here", "https://example.com/pulls"))
}

func TestSanitizeBranch_Characters(t *testing.T) {
	require.Equal(t, "feature-branch-test", SanitizeBranch("feature@branch#test"))
	require.Equal(t, "feature/sub_branch-1", SanitizeBranch("feature/sub_branch-1"))
}

func TestSanitizeBranch_Truncation(t *testing.T) {
	long := strings.Repeat("a", 70)
	got := SanitizeBranch(long)
	require.Len(t, got, 63)
	require.True(t, strings.HasSuffix(got, "..."))
	require.Equal(t, strings.Repeat("a", 60), got[:60])
}

func TestNormalizeEnvironment(t *testing.T) {
	require.Equal(t, "development", NormalizeEnvironment("preview"))
	require.Equal(t, "development", NormalizeEnvironment("Dev"))
	require.Equal(t, "production", NormalizeEnvironment("PROD"))
	require.Equal(t, "staging", NormalizeEnvironment("stage"))
	require.Equal(t, "testing", NormalizeEnvironment("test"))
	require.Equal(t, "qa-eu", NormalizeEnvironment(" qa-eu "))
	require.Equal(t, "production", NormalizeEnvironment("production"))
}
