//go:build !docker

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRelease(t *testing.T, version string, found bool, err error) {
	t.Helper()
	original := detectLatest
	detectLatest = func(repo string) (*selfupdate.Release, bool, error) {
		assert.Equal(t, releaseRepo, repo)
		if err != nil || !found {
			return nil, found, err
		}
		return &selfupdate.Release{Version: semver.MustParse(version), AssetURL: "https://example.com/jogo"}, true, nil
	}
	t.Cleanup(func() { detectLatest = original })
}

func setVersion(t *testing.T, v string) {
	t.Helper()
	original := Version
	Version = v
	t.Cleanup(func() { Version = original })
}

func TestCurrentVersion(t *testing.T) {
	setVersion(t, "")
	_, err := currentVersion()
	assert.EqualError(t, err, "self-upgrade is only available for release builds")

	setVersion(t, "v1.2.3")
	v, err := currentVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.String())

	setVersion(t, "dev")
	_, err = currentVersion()
	assert.Error(t, err)
}

func TestRunSelfUpgradeAlreadyCurrent(t *testing.T) {
	setVersion(t, "1.2.3")
	stubRelease(t, "1.2.3", true, nil)

	var out bytes.Buffer
	require.NoError(t, runSelfUpgrade(&out, strings.NewReader(""), false, false))
	assert.Contains(t, out.String(), "Jogo is already up to date")
}

func TestRunSelfUpgradeCheckOnly(t *testing.T) {
	setVersion(t, "1.2.3")
	stubRelease(t, "1.3.0", true, nil)

	original := updateTo
	updateTo = func(string, string) error {
		t.Fatal("check-only must not download")
		return nil
	}
	t.Cleanup(func() { updateTo = original })

	var out bytes.Buffer
	require.NoError(t, runSelfUpgrade(&out, strings.NewReader(""), true, false))
	assert.Contains(t, out.String(), "New release found! v1.2.3 --> v1.3.0")
}

func TestRunSelfUpgradeCancelled(t *testing.T) {
	setVersion(t, "1.2.3")
	stubRelease(t, "1.3.0", true, nil)

	var out bytes.Buffer
	require.NoError(t, runSelfUpgrade(&out, strings.NewReader("n\n"), false, false))
	assert.Contains(t, out.String(), "Update cancelled.")
}

func TestRunSelfUpgradeDetectFailures(t *testing.T) {
	setVersion(t, "1.2.3")

	stubRelease(t, "", false, errors.New("rate limited"))
	err := runSelfUpgrade(&bytes.Buffer{}, strings.NewReader(""), true, false)
	assert.ErrorContains(t, err, "rate limited")

	stubRelease(t, "", false, nil)
	err = runSelfUpgrade(&bytes.Buffer{}, strings.NewReader(""), true, false)
	assert.EqualError(t, err, "no releases found for Jogo")
}
