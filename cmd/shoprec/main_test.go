package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/explain"
)

const fixture = `{
  "products": [
    {"id": "p1", "name": "Wireless Mouse", "category": "Electronics", "description": "ergonomic wireless mouse"},
    {"id": "p2", "name": "Gaming Mouse", "category": "Electronics", "description": "wired mouse with lights"},
    {"id": "p3", "name": "Laptop Stand", "category": "Office", "description": "aluminium stand"},
    {"id": "p4", "name": "Coffee Beans", "category": "Grocery", "description": "dark roast"}
  ],
  "users": [
    {"user_id": "u1", "name": "Ada"},
    {"user_id": "u2", "name": "Grace"}
  ],
  "interactions": [
    {"user_id": "u1", "product_id": "p1", "interaction_type": "viewed"},
    {"user_id": "u1", "product_id": "p1", "interaction_type": "purchased"}
  ]
}`

func TestCommandStructure(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"version", "recommend", "activity", "users", "import"} {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Errorf("missing command %q: %v", name, err)
		}
	}
	for _, flag := range []string{"config", "json"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
	if newRecommendCmd().Flags().Lookup("user") == nil {
		t.Error("recommend: missing --user flag")
	}
	if newImportCmd().Flags().Lookup("file") == nil {
		t.Error("import: missing --file flag")
	}
}

// clearEnv 清空会影响配置加载的环境变量。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SHOPREC_CONFIG", "OPENAI_API_KEY", "OPENAI_BASE_URL", "REDIS_ADDR",
		"SHOPREC_STORE_BACKEND", "SHOPREC_SQLITE_PATH", "SHOPREC_PIPELINE_PATH",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

// setup 写入 sqlite 配置与 fixture，LLM 指向本地 httptest 服务。
func setup(t *testing.T, llm http.HandlerFunc) (configPath, fixturePath string) {
	t.Helper()
	clearEnv(t)
	srv := httptest.NewServer(llm)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	configPath = filepath.Join(dir, "shoprec.yaml")
	cfg := fmt.Sprintf(`
log:
  level: disabled
store:
  backend: sqlite
  sqlite_path: %s
llm:
  base_url: %s
  api_key: sk-test
`, filepath.Join(dir, "shop.db"), srv.URL)
	if err := os.WriteFile(configPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	fixturePath = filepath.Join(dir, "fixture.json")
	if err := os.WriteFile(fixturePath, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}
	return configPath, fixturePath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func chatOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Pairs well with your mouse."}}]}`)
}

func TestImportAndRecommend(t *testing.T) {
	configPath, fixturePath := setup(t, chatOK)

	out, err := run(t, "--config", configPath, "import", "--file", fixturePath)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "Imported 4 products, 2 users, 2 interactions") {
		t.Errorf("import output = %q", out)
	}

	out, err = run(t, "--config", configPath, "--json", "recommend", "--user", "u1")
	if err != nil {
		t.Fatalf("recommend error = %v", err)
	}
	var resp struct {
		UserID          string                `json:"user_id"`
		Recommendations []core.Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(resp.Recommendations) != 3 {
		t.Fatalf("recommendations = %d, want 3", len(resp.Recommendations))
	}
	if resp.Recommendations[0].Product.ID != "p2" {
		t.Errorf("top recommendation = %s, want p2", resp.Recommendations[0].Product.ID)
	}
	for _, r := range resp.Recommendations {
		if r.Product.ID == "p1" {
			t.Error("interacted product p1 recommended")
		}
		if r.Explanation == nil || *r.Explanation != "Pairs well with your mouse." {
			t.Errorf("explanation for %s = %v", r.Product.ID, r.Explanation)
		}
	}

	// 无交互的用户走冷启动：目录前 3 个，不带理由
	out, err = run(t, "--config", configPath, "--json", "recommend", "--user", "u2")
	if err != nil {
		t.Fatalf("recommend u2 error = %v", err)
	}
	if strings.Contains(out, "explanation") || !strings.Contains(out, `"p3"`) || strings.Contains(out, `"p4"`) {
		t.Errorf("cold start output = %s", out)
	}
}

func TestDefaultConfigKeepsImportedData(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPREC_LOG_LEVEL", "disabled")
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile("fx.json", []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "import", "--file", "fx.json")
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(out, "into sqlite") {
		t.Errorf("import output = %q, want sqlite backend", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "shoprec.db")); err != nil {
		t.Errorf("default database not created: %v", err)
	}

	out, err = run(t, "users")
	if err != nil {
		t.Fatalf("users error = %v", err)
	}
	if !strings.Contains(out, "u1\tAda") {
		t.Errorf("users output = %q", out)
	}

	// 未配置 API key：排序路径照常返回，理由使用兜底文案
	out, err = run(t, "recommend", "--user", "u1")
	if err != nil {
		t.Fatalf("recommend error = %v", err)
	}
	if !strings.HasPrefix(out, "1. Gaming Mouse") || strings.Count(out, explain.FallbackExplanation) != 3 {
		t.Errorf("recommend output:\n%s", out)
	}
}

func TestImport_RejectsMemoryBackend(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("SHOPREC_LOG_LEVEL", "disabled")
	t.Setenv("SHOPREC_STORE_BACKEND", "memory")
	if err := os.WriteFile("fx.json", []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "import", "--file", "fx.json")
	if err == nil || !strings.Contains(err.Error(), "memory store backend") {
		t.Errorf("import error = %v, want memory backend rejection", err)
	}
	if strings.Contains(out, "Imported") {
		t.Errorf("import output = %q, should not report success", out)
	}
}

func TestRecommend_CustomPipeline(t *testing.T) {
	configPath, fixturePath := setup(t, chatOK)
	pipelinePath := filepath.Join(filepath.Dir(configPath), "pipeline.yaml")
	if err := os.WriteFile(pipelinePath, []byte(`
pipeline:
  name: custom
  nodes:
    - type: recall.content
    - type: filter
      config:
        filters:
          - type: interacted
          - type: blacklist
            item_ids: ["p2"]
    - type: rerank.topn
      config:
        n: 1
`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHOPREC_PIPELINE_PATH", pipelinePath)

	if _, err := run(t, "--config", configPath, "import", "--file", fixturePath); err != nil {
		t.Fatalf("import error = %v", err)
	}
	out, err := run(t, "--config", configPath, "recommend", "--user", "u1")
	if err != nil {
		t.Fatalf("recommend error = %v", err)
	}
	if strings.Count(out, ". ") != 1 || strings.Contains(out, "Gaming Mouse") || strings.Contains(out, "Wireless Mouse") {
		t.Errorf("recommend output:\n%s", out)
	}
}

func TestRecommend_LLMFailureUsesFallback(t *testing.T) {
	configPath, fixturePath := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	if _, err := run(t, "--config", configPath, "import", "--file", fixturePath); err != nil {
		t.Fatalf("import error = %v", err)
	}
	out, err := run(t, "--config", configPath, "recommend", "--user", "u1")
	if err != nil {
		t.Fatalf("recommend error = %v", err)
	}
	if n := strings.Count(out, explain.FallbackExplanation); n != 3 {
		t.Errorf("fallback count = %d, output:\n%s", n, out)
	}
}

func TestActivityAndUsers(t *testing.T) {
	configPath, fixturePath := setup(t, chatOK)
	if _, err := run(t, "--config", configPath, "import", "--file", fixturePath); err != nil {
		t.Fatalf("import error = %v", err)
	}

	out, err := run(t, "--config", configPath, "--json", "activity", "--user", "u1")
	if err != nil {
		t.Fatalf("activity error = %v", err)
	}
	var act core.Activity
	if err := json.Unmarshal([]byte(out), &act); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(act.Viewed) != 1 || len(act.Purchased) != 1 || len(act.AddedToCart) != 0 {
		t.Errorf("activity = %+v", act)
	}

	out, err = run(t, "--config", configPath, "users")
	if err != nil {
		t.Fatalf("users error = %v", err)
	}
	if !strings.Contains(out, "u1\tAda") || !strings.Contains(out, "u2\tGrace") {
		t.Errorf("users output = %q", out)
	}
}

func TestRecommend_Errors(t *testing.T) {
	configPath, _ := setup(t, chatOK)
	if _, err := run(t, "--config", configPath, "recommend"); err == nil {
		t.Error("recommend without --user should fail")
	}
	if _, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "recommend", "--user", "u1"); err == nil {
		t.Error("missing config file should fail")
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--json", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("version output = %q", out)
	}
}
