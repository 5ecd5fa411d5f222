package mongostore

import (
	"strings"
	"testing"
)

func TestConfigURI_EscapesCredentials(t *testing.T) {
	cfg := Config{
		Username:   "analyst@corp",
		Password:   "p@ss:word/1",
		ClusterURL: "cluster0.abc123.mongodb.net",
	}

	uri := cfg.URI()

	if !strings.HasPrefix(uri, "mongodb+srv://") {
		t.Errorf("URI missing srv scheme: %s", uri)
	}
	if strings.Contains(uri, "p@ss:word/1") {
		t.Errorf("password not escaped: %s", uri)
	}
	if !strings.Contains(uri, "@cluster0.abc123.mongodb.net/") {
		t.Errorf("cluster URL missing: %s", uri)
	}
	if !strings.Contains(uri, "appName=Procurement") {
		t.Errorf("appName parameter missing: %s", uri)
	}
}

func TestConfigFromEnv_RequiresAllValues(t *testing.T) {
	t.Setenv("MONGODB_USERNAME", "user")
	t.Setenv("MONGODB_PASSWORD", "pass")
	t.Setenv("MONGODB_CLUSTER_URL", "")

	if _, err := ConfigFromEnv(); err == nil {
		t.Error("ConfigFromEnv() with missing cluster URL should fail")
	}

	t.Setenv("MONGODB_CLUSTER_URL", "cluster0.example.mongodb.net")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() error = %v", err)
	}
	if cfg.Username != "user" {
		t.Errorf("Username = %q, want %q", cfg.Username, "user")
	}
}
