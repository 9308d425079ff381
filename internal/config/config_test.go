package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGlobalConfigPathRespectsXDG(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	want := filepath.Join(tmp, "papershelf", "config.yml")
	if got := GlobalConfigPath(); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &GlobalConfig{
		DataDir:            "/data/papers",
		RegistryMailTo:     "shelf@example.org",
		HTTPTimeoutSeconds: 4.5,
		HTTPRetries:        5,
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if loaded.DataDir != cfg.DataDir || loaded.RegistryMailTo != cfg.RegistryMailTo {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if loaded.HTTPTimeoutSeconds != 4.5 || loaded.HTTPRetries != 5 {
		t.Errorf("numeric fields lost: %+v", loaded)
	}
}

func TestResolveDataDirPrecedence(t *testing.T) {
	cfg := &GlobalConfig{DataDir: "/configured/dir"}

	t.Setenv("PAPERSHELF_DATA", "/env/dir")
	if got := cfg.ResolveDataDir(); got != "/env/dir" {
		t.Errorf("env var should win: %q", got)
	}

	os.Unsetenv("PAPERSHELF_DATA")
	if got := cfg.ResolveDataDir(); got != "/configured/dir" {
		t.Errorf("configured dir should win over default: %q", got)
	}

	t.Setenv("XDG_DATA_HOME", "/xdg/share")
	empty := &GlobalConfig{}
	want := filepath.Join("/xdg/share", DataDirName)
	if got := empty.ResolveDataDir(); got != want {
		t.Errorf("default = %q, want %q", got, want)
	}
}

func TestDerivedPaths(t *testing.T) {
	t.Setenv("PAPERSHELF_DATA", "/lib")
	cfg := &GlobalConfig{}

	if got := cfg.UploadsPath(); got != filepath.Join("/lib", UploadsDir) {
		t.Errorf("uploads path = %q", got)
	}
	if got := cfg.ThumbsPath(); got != filepath.Join("/lib", ThumbsDir) {
		t.Errorf("thumbs path = %q", got)
	}
	if got := cfg.DBPath(); got != filepath.Join("/lib", DBFile) {
		t.Errorf("db path = %q", got)
	}
}

func TestEnsureDataDirs(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("PAPERSHELF_DATA", filepath.Join(tmp, "lib"))

	cfg := &GlobalConfig{}
	if err := cfg.EnsureDataDirs(); err != nil {
		t.Fatalf("EnsureDataDirs() error = %v", err)
	}
	for _, dir := range []string{cfg.UploadsPath(), cfg.ThumbsPath()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("directory %q not created: %v", dir, err)
		}
	}
}

func TestRegistryConfigMapping(t *testing.T) {
	cfg := &GlobalConfig{
		RegistryMailTo:     "shelf@example.org",
		HTTPTimeoutSeconds: 2,
		HTTPRetries:        7,
	}
	rc := cfg.RegistryConfig()
	if rc.MailTo != "shelf@example.org" {
		t.Errorf("mailto = %q", rc.MailTo)
	}
	if rc.Timeout != 2*time.Second {
		t.Errorf("timeout = %v", rc.Timeout)
	}
	if rc.Retries != 7 {
		t.Errorf("retries = %d", rc.Retries)
	}

	// Unset fields keep the client defaults.
	rc = (&GlobalConfig{}).RegistryConfig()
	if rc.Timeout <= 0 || rc.Retries <= 0 {
		t.Errorf("defaults missing: %+v", rc)
	}
}

func TestMergePolicy(t *testing.T) {
	if pol := (&GlobalConfig{}).MergePolicy(); !pol.RequireCompleteOverride {
		t.Error("strict override should be the default")
	}
	if pol := (&GlobalConfig{LooseAbstractOverride: true}).MergePolicy(); pol.RequireCompleteOverride {
		t.Error("loose_abstract_override should relax the policy")
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandTilde("~/papers"); got != filepath.Join(home, "papers") {
		t.Errorf("ExpandTilde(~/papers) = %q", got)
	}
	if got := ExpandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute paths must pass through: %q", got)
	}
	if got := ExpandTilde("~"); got != home {
		t.Errorf("ExpandTilde(~) = %q", got)
	}
}
