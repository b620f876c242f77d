// Package update checks GitHub releases for a newer licensebanner.
package update

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	semver "github.com/blang/semver/v4"
	"go.trai.ch/zerr"
)

const (
	// LatestURL is the release endpoint queried by default.
	LatestURL     = "https://api.github.com/repos/redactyl/licensebanner/releases/latest"
	cacheFileName = "update.json"
	cacheTTL      = 24 * time.Hour
)

// ErrNoConfigDir is returned when no cache directory can be resolved.
var ErrNoConfigDir = zerr.New("no config dir")

type cache struct {
	LastChecked time.Time `json:"last_checked"`
	Latest      string    `json:"latest"`
}

// Checker queries one release endpoint, caching the answer for a day.
type Checker struct {
	URL    string
	Client *http.Client
	// Dir holds the cache file; empty means the XDG config dir.
	Dir string
}

// NewChecker returns a checker for the public release endpoint.
func NewChecker() *Checker {
	return &Checker{URL: LatestURL, Client: &http.Client{Timeout: 2 * time.Second}}
}

func (c *Checker) dir() string {
	if c.Dir != "" {
		return c.Dir
	}
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "licensebanner")
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "licensebanner")
}

func (c *Checker) loadCache() (cache, error) {
	var cc cache
	dir := c.dir()
	if dir == "" {
		return cc, ErrNoConfigDir
	}
	b, err := os.ReadFile(filepath.Join(dir, cacheFileName)) //nolint:gosec // fixed name in config dir
	if err != nil {
		return cc, err
	}
	_ = json.Unmarshal(b, &cc)
	return cc, nil
}

func (c *Checker) saveCache(cc cache) {
	dir := c.dir()
	if dir == "" {
		return
	}
	_ = os.MkdirAll(dir, 0o755)
	b, _ := json.MarshalIndent(cc, "", "  ")
	_ = os.WriteFile(filepath.Join(dir, cacheFileName), b, 0o600)
}

func (c *Checker) latestOnline() (string, error) {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequest(http.MethodGet, c.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "licensebanner-updater")
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", zerr.With(zerr.New("release lookup failed"), "status", resp.StatusCode)
	}
	var obj struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return "", err
	}
	v := obj.TagName
	if v == "" {
		v = obj.Name
	}
	return v, nil
}

// Check returns (latest, isNewer, error). It skips the network in CI or
// when noNetwork is set, and otherwise refreshes a stale cache.
func (c *Checker) Check(current string, noNetwork bool) (string, bool, error) {
	if os.Getenv("CI") != "" || noNetwork {
		return "", false, nil
	}
	cc, _ := c.loadCache()
	latest := cc.Latest
	if time.Since(cc.LastChecked) > cacheTTL || latest == "" {
		v, err := c.latestOnline()
		if err != nil {
			return latest, false, err
		}
		latest = normalize(v)
		c.saveCache(cache{LastChecked: time.Now(), Latest: latest})
	}
	cur, err := semver.ParseTolerant(current)
	if err != nil {
		return latest, false, nil
	}
	lv, err := semver.ParseTolerant(latest)
	if err != nil {
		return latest, false, nil
	}
	return latest, lv.GT(cur), nil
}

func normalize(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}
