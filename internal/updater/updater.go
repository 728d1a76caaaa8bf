package updater

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

const (
	// RepoSlug is the GitHub repository releases are fetched from
	RepoSlug         = "CaptShanks/travelprism"
	installScriptURL = "https://raw.githubusercontent.com/CaptShanks/travelprism/main/install.sh"

	// DefaultIntervalDays is the default number of days between cached checks
	DefaultIntervalDays = 7
	cacheFileName       = "update-check"
)

// LatestFunc looks up the latest released version for a repository slug
type LatestFunc func(slug string) (version string, found bool, err error)

// Checker compares the running version against the latest GitHub release,
// caching the answer in CacheDir for IntervalDays.
type Checker struct {
	Slug         string
	CacheDir     string
	IntervalDays int
	latest       LatestFunc
	now          func() time.Time
}

// NewChecker returns a checker for RepoSlug caching under cacheDir
func NewChecker(cacheDir string, intervalDays int) *Checker {
	if intervalDays <= 0 {
		intervalDays = DefaultIntervalDays
	}
	return &Checker{
		Slug:         RepoSlug,
		CacheDir:     cacheDir,
		IntervalDays: intervalDays,
		latest:       detectLatest,
		now:          time.Now,
	}
}

func detectLatest(slug string) (string, bool, error) {
	latest, found, err := selfupdate.DetectLatest(slug)
	if err != nil || !found {
		return "", false, err
	}
	return latest.Version.String(), true, nil
}

// CheckLatest fetches the latest release and compares with currentVersion.
// Returns (latestVersion, hasUpdate, err). Callers must never fail a command on err.
func (c *Checker) CheckLatest(currentVersion string) (latestVersion string, hasUpdate bool, err error) {
	latestVersion, found, err := c.latest(c.Slug)
	if err != nil || !found {
		return "", false, err
	}
	latestVersion = normalizeVersion(latestVersion)

	latestSemver, err := semver.Parse(latestVersion)
	if err != nil {
		return latestVersion, false, err
	}
	currentSemver, err := semver.Parse(normalizeVersion(currentVersion))
	if err != nil {
		return latestVersion, false, err
	}
	return latestVersion, latestSemver.GT(currentSemver), nil
}

// updateCache holds cached update check results.
type updateCache struct {
	LastCheckEpoch int64  `json:"last_check_epoch"`
	LatestVersion  string `json:"latest_version,omitempty"`
	HasUpdate      bool   `json:"has_update"`
}

func (c *Checker) cachePath() (string, error) {
	if c.CacheDir == "" {
		return "", fmt.Errorf("no cache directory configured")
	}
	if err := os.MkdirAll(c.CacheDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(c.CacheDir, cacheFileName), nil
}

// CheckLatestWithCache checks for updates, but only if the cache interval has elapsed.
// Within the interval the cached result is returned.
func (c *Checker) CheckLatestWithCache(currentVersion string) (latestVersion string, hasUpdate bool, err error) {
	intervalSec := int64(c.IntervalDays) * 24 * 60 * 60

	path, err := c.cachePath()
	if err != nil {
		return c.CheckLatest(currentVersion)
	}

	if data, err := os.ReadFile(path); err == nil {
		var cache updateCache
		if json.Unmarshal(data, &cache) == nil && c.now().Unix()-cache.LastCheckEpoch < intervalSec {
			return cache.LatestVersion, cache.HasUpdate, nil
		}
	}

	latest, hasUpdate, err := c.CheckLatest(currentVersion)
	if err != nil {
		return "", false, err
	}

	cache := updateCache{
		LastCheckEpoch: c.now().Unix(),
		LatestVersion:  latest,
		HasUpdate:      hasUpdate,
	}
	if data, err := json.Marshal(cache); err == nil {
		_ = os.WriteFile(path, data, 0644)
	}

	return latest, hasUpdate, nil
}

// Upgrade replaces the current binary with the latest release.
// On success returns the new version.
func (c *Checker) Upgrade(currentVersion string) (newVersion string, err error) {
	v, err := semver.Parse(normalizeVersion(currentVersion))
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", currentVersion, err)
	}

	latest, err := selfupdate.UpdateSelf(v, c.Slug)
	if err != nil {
		return "", err
	}
	return latest.Version.String(), nil
}

// CurlFallbackMessage returns the message to display when self-update fails.
func CurlFallbackMessage(reason error) string {
	return fmt.Sprintf(`Self-update failed: %v
To upgrade manually, run:
  curl -sSfL %s | sh`, reason, installScriptURL)
}

func normalizeVersion(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "v")
}
