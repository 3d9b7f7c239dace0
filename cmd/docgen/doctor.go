package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-docgen/internal/config"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	Chrome    chromeInfo    `json:"chrome"`
	Templates templatesInfo `json:"templates"`
	Env       envInfo       `json:"environment"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

type chromeInfo struct {
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
	Sandbox  bool   `json:"sandbox"`
	Launched *bool  `json:"launched,omitempty"` // set only with --launch
}

type templatesInfo struct {
	Source  string `json:"source"` // "embedded" or the custom directory
	Catalog string `json:"catalog"`
	Loaded  int    `json:"loaded"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// runDoctor executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags or config.
func runDoctor(ctx context.Context, args []string, env *Environment) int {
	fs := newFlagSet("doctor", env.Stderr)
	jsonOutput := fs.Bool("json", false, "print the report as JSON")
	launch := fs.Bool("launch", false, "start and stop the browser once")
	if err := parseFlags(fs, args); err != nil {
		fmt.Fprintf(env.Stderr, "docgen doctor: %v\n", err)
		return exitCodeFor(err)
	}
	cfg, err := loadConfig(fs, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "docgen doctor: %v\n", err)
		return exitCodeFor(err)
	}

	result := diagnose(ctx, cfg, env, *launch)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// diagnose performs all checks.
func diagnose(ctx context.Context, cfg *config.Config, env *Environment, launch bool) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	checkChrome(result, cfg, env)
	if launch && result.Chrome.Found {
		checkLaunch(ctx, result, cfg, env)
	}
	checkTemplates(ctx, result, cfg)
	checkEnvironment(result, cfg)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkChrome locates the browser binary and reads its version.
func checkChrome(result *doctorResult, cfg *config.Config, env *Environment) {
	chromePath := cfg.PDF.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = env.LookBrowser()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	result.Chrome.Sandbox = !cfg.PDF.NoSandbox

	out, err := exec.Command(chromePath, "--version").Output()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
		return
	}
	result.Chrome.Version = strings.TrimSpace(string(out))
}

// checkLaunch starts the engine and shuts it down again.
func checkLaunch(ctx context.Context, result *doctorResult, cfg *config.Config, env *Environment) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	engine := env.NewEngine(cfg, zap.NewNop())
	err := engine.Initialize(ctx)
	_ = engine.Shutdown()

	ok := err == nil
	result.Chrome.Launched = &ok
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Browser launch failed: %v", err))
	}
}

// checkTemplates loads the catalog and preloads every template.
func checkTemplates(ctx context.Context, result *doctorResult, cfg *config.Config) {
	result.Templates.Source = "embedded"
	if cfg.Templates.Dir != "" {
		result.Templates.Source = cfg.Templates.Dir
	}
	result.Templates.Catalog = cfg.Templates.Catalog
	if result.Templates.Catalog == "" {
		result.Templates.Catalog = "(template source)"
	}

	a, err := newApp(cfg, zap.NewNop())
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Catalog: %v", err))
		return
	}
	if err := a.cache.PreloadAll(ctx); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Templates: %v", err))
		return
	}
	result.Templates.Loaded = a.catalog.Pairs()
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, cfg *config.Config) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && !cfg.PDF.NoSandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but the sandbox is enabled. Set PDF_NO_SANDBOX=true")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docgen doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
		if r.Chrome.Launched != nil && *r.Chrome.Launched {
			fmt.Fprintln(w, "  [OK] Launch: browser started and stopped")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Templates")
	fmt.Fprintf(w, "  [OK] Source: %s\n", r.Templates.Source)
	if r.Templates.Loaded > 0 {
		fmt.Fprintf(w, "  [OK] Loaded: %d template versions\n", r.Templates.Loaded)
	} else {
		fmt.Fprintln(w, "  [ERROR] Not loaded")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: READY")
	case "warnings":
		fmt.Fprintln(w, "Status: READY (with warnings)")
	default:
		fmt.Fprintln(w, "Status: NOT READY")
	}
}
