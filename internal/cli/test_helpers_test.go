package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"clashctl/internal/clash"
	"clashctl/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runCLI executes the root command with a fresh app instance and
// returns captured stdout/stderr. Flag state is reset between runs
// because the command tree is package-level.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	appInstance = nil
	resetCommandTree(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetCommandTree(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetCommandTree(sub)
	}
}

// isolateEnv points the config store at a temp file and clears the
// environment tiers so tests see deterministic defaults.
func isolateEnv(t *testing.T) string {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(config.EnvConfigPath, storePath)
	t.Setenv(config.EnvHost, "")
	t.Setenv(config.EnvSecret, "")
	return storePath
}

// fakeDaemon is a minimal stand-in for the Clash control API.
type fakeDaemon struct {
	mu       sync.Mutex
	entries  []clash.Proxy // served in this order
	delays   map[string]int
	failures map[string]int // node -> HTTP status for its delay probe
	puts     []string       // "group=node" per PUT received
}

func (d *fakeDaemon) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /proxies", func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		defer d.mu.Unlock()
		var buf bytes.Buffer
		buf.WriteString(`{"proxies":{`)
		for i, entry := range d.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(entry.Name)
			val, _ := json.Marshal(entry)
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteString("}}")
		_, _ = w.Write(buf.Bytes())
	})

	mux.HandleFunc("GET /proxies/{name}", func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		defer d.mu.Unlock()
		name := r.PathValue("name")
		for _, entry := range d.entries {
			if entry.Name == name {
				_ = json.NewEncoder(w).Encode(entry)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"proxy not found"}`))
	})

	mux.HandleFunc("GET /proxies/{name}/delay", func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		defer d.mu.Unlock()
		name := r.PathValue("name")
		if status, ok := d.failures[name]; ok {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"probe failed"}`))
			return
		}
		delay, ok := d.delays[name]
		if !ok {
			_, _ = w.Write([]byte(`{}`)) // no measurement
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"delay": delay})
	})

	mux.HandleFunc("PUT /proxies/{name}", func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		defer d.mu.Unlock()
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		d.puts = append(d.puts, r.PathValue("name")+"="+body.Name)
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func (d *fakeDaemon) serve(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(d.handler())
	t.Cleanup(server.Close)
	return server.URL
}

func (d *fakeDaemon) putCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.puts)
}

func testTopology() []clash.Proxy {
	return []clash.Proxy{
		{Name: "Proxy", Type: clash.TypeSelector, Now: "HK 01", All: []string{"HK 01", "JP 02", "US 03"}},
		{Name: "Auto", Type: clash.TypeURLTest, Now: "JP 02", All: []string{"JP 02", "US 03"}},
		{Name: "HK 01", Type: "Vmess", UDP: true},
		{Name: "JP 02", Type: "Shadowsocks", UDP: true},
		{Name: "US 03", Type: "Trojan"},
	}
}
