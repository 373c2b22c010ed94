package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evolution-x/site-metadata/internal/config"
)

const (
	testToken      = "test-token"
	testRepository = "Evolution-X/OTA"
)

// fakeGitHub serves the REST, raw content and image endpoints the tools read.
type fakeGitHub struct {
	mu sync.Mutex
	// branches is the branch list; branchStatus overrides the response code when set.
	branches     []string
	branchStatus int
	// builds maps a branch to the device manifests it carries.
	builds map[string][]string
	// manifests is keyed by "branch/device" and holds raw JSON.
	manifests map[string]string
	// images is keyed by device.
	images map[string][]byte

	manifestGets atomic.Int32
	imageGets    atomic.Int32
	unauthorized atomic.Int32
}

// start serves f and returns a configuration file and output directory pointing at it.
func (f *fakeGitHub) start(t *testing.T) (configPath, outputDir string) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(server.Close)

	outputDir = t.TempDir()
	configPath = filepath.Join(t.TempDir(), config.DefaultConfigFilename)

	cfg := config.Default()
	cfg.APIURL = server.URL
	cfg.RawURL = server.URL
	cfg.ImageURLTemplate = server.URL + "/images/{device}.png"
	cfg.OutputDir = outputDir
	cfg.Timeout = 5 * time.Second

	require.NoError(t, config.Save(configPath, cfg))

	return configPath, outputDir
}

func (f *fakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	apiPrefix := "/repos/" + testRepository + "/"
	rawPrefix := "/" + testRepository + "/refs/heads/"

	switch {
	case strings.HasPrefix(r.URL.Path, apiPrefix):
		if !f.authorized(w, r) {
			return
		}

		f.serveAPI(w, r, strings.TrimPrefix(r.URL.Path, apiPrefix))
	case strings.HasPrefix(r.URL.Path, rawPrefix):
		if !f.authorized(w, r) {
			return
		}

		f.serveManifest(w, strings.TrimPrefix(r.URL.Path, rawPrefix))
	case strings.HasPrefix(r.URL.Path, "/images/"):
		f.serveImage(w, r, strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/images/"), ".png"))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeGitHub) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") == "token "+testToken {
		return true
	}

	f.unauthorized.Add(1)
	http.Error(w, "bad credentials", http.StatusUnauthorized)

	return false
}

func (f *fakeGitHub) serveAPI(w http.ResponseWriter, r *http.Request, endpoint string) {
	switch endpoint {
	case "branches":
		if f.branchStatus != 0 {
			http.Error(w, "unavailable", f.branchStatus)

			return
		}

		page := make([]map[string]string, 0, len(f.branches))
		if r.URL.Query().Get("page") == "1" {
			for _, name := range f.branches {
				page = append(page, map[string]string{"name": name})
			}
		}

		writeJSON(w, page)
	case "contents/builds":
		devices, ok := f.builds[r.URL.Query().Get("ref")]
		if !ok {
			http.NotFound(w, r)

			return
		}

		listing := []map[string]string{
			{"name": "README.md", "type": "file"},
			{"name": "archive", "type": "dir"},
		}
		for _, device := range devices {
			listing = append(listing, map[string]string{"name": device + ".json", "type": "file"})
		}

		writeJSON(w, listing)
	default:
		http.NotFound(w, r)
	}
}

// serveManifest handles <branch>/builds/<device>.json.
func (f *fakeGitHub) serveManifest(w http.ResponseWriter, rest string) {
	f.manifestGets.Add(1)

	branch, file, ok := strings.Cut(rest, "/builds/")
	body, found := f.manifests[branch+"/"+strings.TrimSuffix(file, ".json")]

	if !ok || !found {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	_, _ = w.Write([]byte(body))
}

func (f *fakeGitHub) serveImage(w http.ResponseWriter, r *http.Request, device string) {
	data, ok := f.images[device]
	if !ok {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	if r.Method == http.MethodGet {
		f.imageGets.Add(1)
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func manifestJSON(maintainer, github, oem, device, version string, maintained bool, images ...string) string {
	return manifestOf(entryJSON(maintainer, github, oem, device, version, maintained, images...))
}

// manifestOf wraps raw entry documents in a manifest.
func manifestOf(entries ...string) string {
	return `{"response":[` + strings.Join(entries, ",") + `]}`
}

func entryJSON(maintainer, github, oem, device, version string, maintained bool, images ...string) string {
	entry := map[string]any{
		"maintainer":                  maintainer,
		"github":                      github,
		"oem":                         oem,
		"device":                      device,
		"filename":                    "EvolutionX-" + device + ".zip",
		"download":                    "https://sourceforge.net/projects/evolution-x/files/" + device + "/" + version + "/EvolutionX-" + device + ".zip/download",
		"version":                     version,
		"currently_maintained":        maintained,
		"initial_installation_images": images,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		panic(err)
	}

	return string(data)
}

// newFakeGitHub returns a repository with two branches and three devices.
func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		branches: []string{"vic", "udc"},
		builds: map[string][]string{
			"vic": {"husky", "a52q", "lemonade"},
			"udc": {"husky", "lemonade"},
		},
		manifests: map[string]string{
			"vic/husky":    manifestJSON("Jane", "jane", "Google", "husky", "10.0", true, "boot", "vendor_boot"),
			"udc/husky":    manifestJSON("Jane", "jane", "Google", "husky", "9.5", false, "boot"),
			"vic/a52q":     manifestJSON("Bob", "bob", "Samsung", "a52q", "10.0", true, "recovery", "super_empty"),
			"vic/lemonade": manifestJSON("Ann", "ann", "OnePlus", "lemonade", "10.0", false),
			"udc/lemonade": manifestJSON("Ann", "ann", "OnePlus", "lemonade", "9.5", false),
		},
		images: map[string][]byte{
			"husky": []byte("husky-png"),
			"a52q":  []byte("a52q-png"),
		},
	}
}
