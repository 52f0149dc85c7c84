// cmd/investigator is the thin local/manual-operation CLI (§1 "a library
// plus a small number of thin cmd/ binaries"): it reads one normalized alert
// event, runs the investigation pipeline, optionally dispatches a single
// chat tool against the result, and prints the Investigation as stable
// JSON. The HTTP webhook receiver, persistent storage, and chat UI remain
// external collaborators reached only through the interfaces in §6.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sreagent/investigator/internal/config"
	"github.com/sreagent/investigator/pkg/authz"
	"github.com/sreagent/investigator/pkg/collectors"
	"github.com/sreagent/investigator/pkg/core"
	"github.com/sreagent/investigator/pkg/dump"
	"github.com/sreagent/investigator/pkg/memory"
	"github.com/sreagent/investigator/pkg/pipeline"
	"github.com/sreagent/investigator/pkg/providers/cloud"
	"github.com/sreagent/investigator/pkg/providers/k8s"
	"github.com/sreagent/investigator/pkg/providers/llm"
	"github.com/sreagent/investigator/pkg/providers/logs"
	"github.com/sreagent/investigator/pkg/providers/metrics"
	"github.com/sreagent/investigator/pkg/providers/scm"
	sharedlogging "github.com/sreagent/investigator/pkg/shared/logging"
	"github.com/sreagent/investigator/pkg/tools"
)

// runTimeout bounds one CLI invocation end to end, including every provider
// call the pipeline and an optional tool dispatch make.
const runTimeout = 2 * time.Minute

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	dotenvPath := flag.String("dotenv", "", "path to a .env overlay file (local-dev convenience)")
	alertPath := flag.String("alert", "-", "path to a JSON alert event, or - for stdin")
	timeWindow := flag.String("window", "1h", "investigation time window, e.g. 1h, 30m, 2h30m")
	mode := flag.String("mode", "full", "output projection: full | analysis")
	toolName := flag.String("tool", "", "optional chat tool to invoke against the resulting investigation")
	toolArgsJSON := flag.String("tool-args", "{}", "JSON object of arguments for -tool")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	entry := log.WithField("component", "cmd/investigator")

	cfg, err := loadConfig(*configPath, *dotenvPath)
	if err != nil {
		entry.WithError(err).Fatal("failed to load configuration")
	}

	alert, err := readAlert(*alertPath)
	if err != nil {
		entry.WithError(err).Fatal("failed to read alert event")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, runTimeout)
	defer cancelTimeout()

	deps, actions := wireProviders(ctx, cfg, log, entry)

	registry := collectors.NewRegistry()
	llmClient := newLLMClient(cfg, log, entry)
	pl := pipeline.New(pipeline.Deps{Registry: registry, CollectorDeps: deps, LLM: llmClient, Log: entry})

	start := time.Now()
	inv := pl.RunInvestigation(ctx, alert, *timeWindow)
	fields := sharedlogging.NewFields().
		Operation("run_investigation").
		Resource(string(inv.Analysis.Features.Family), inv.Target.Pod).
		Duration(time.Since(start))
	entry.WithFields(logrus.Fields(fields)).Info("investigation complete")

	if *toolName != "" {
		result := dispatchTool(ctx, *toolName, *toolArgsJSON, inv, deps, pl, actions, entry)
		printJSON(result)
		return
	}

	payload, err := dump.ToJSON(inv, dump.Mode(*mode))
	if err != nil {
		entry.WithError(err).Fatal("failed to marshal investigation")
	}
	fmt.Println(string(payload))
}

func loadConfig(configPath, dotenvPath string) (*config.Config, error) {
	if dotenvPath != "" {
		return config.LoadFromEnv(dotenvPath)
	}
	return config.Load(configPath)
}

func readAlert(path string) (core.AlertInstance, error) {
	var r io.Reader
	if path == "-" || path == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return core.AlertInstance{}, fmt.Errorf("open alert file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var alert core.AlertInstance
	if err := json.NewDecoder(r).Decode(&alert); err != nil {
		return core.AlertInstance{}, fmt.Errorf("decode alert JSON: %w", err)
	}
	return alert, nil
}

// wireProviders constructs every provider the pipeline and tool runtime can
// use, tolerating individual provider failures: an unconfigured or
// unreachable provider is logged and left nil rather than aborting the run,
// matching the spec's "every evidence slot is independently optional"
// design (§3).
func wireProviders(ctx context.Context, cfg *config.Config, log *logrus.Logger, entry *logrus.Entry) (collectors.Deps, *tools.ActionLedger) {
	var k8sClient k8s.Client
	if c, err := k8s.NewClient(cfg.K8s, log); err != nil {
		entry.WithError(err).Warn("k8s provider unavailable")
	} else {
		k8sClient = c
	}

	logsClient := logs.NewClient(cfg.Logs, cfg.K8s.InCluster, entry)

	var metricsClient *metrics.Client
	if cfg.Metrics.URL != "" {
		if c, err := metrics.NewClient(cfg.Metrics.URL, entry); err != nil {
			entry.WithError(err).Warn("metrics provider unavailable")
		} else {
			metricsClient = c
		}
	}

	var cloudClient *cloud.Client
	if cfg.AWS.EvidenceEnabled {
		if c, err := cloud.NewClient(ctx, entry); err != nil {
			entry.WithError(err).Warn("aws provider unavailable")
		} else {
			cloudClient = c
		}
	}

	var scmClient *scm.Client
	if c, err := scm.NewClient(cfg.GitHub, entry); err != nil {
		entry.WithError(err).Warn("github provider unavailable")
	} else {
		scmClient = c
	}
	discoverer := scm.NewDiscoverer(scmClient, cfg.GitHub.DefaultOrg, scm.Catalog{}, scm.Catalog{})

	deps := collectors.Deps{
		Config:    *cfg,
		K8s:       k8sClient,
		Logs:      logsClient,
		Metrics:   metricsClient,
		Cloud:     cloudClient,
		SCM:       discoverer,
		SCMClient: scmClient,
		Log:       entry,
	}
	return deps, tools.NewActionLedger()
}

func newLLMClient(cfg *config.Config, log *logrus.Logger, entry *logrus.Entry) llm.Client {
	if !cfg.LLM.Enabled {
		return nil
	}
	c, err := llm.NewClient(cfg.LLM, log)
	if err != nil {
		entry.WithError(err).Warn("llm provider unavailable, enrichment disabled for this run")
		return nil
	}
	return c
}

// defaultChatPolicy permits the full read-only tool surface for a local,
// manually-invoked CLI run; a deployed chat surface would build its policy
// from RBAC/tenant configuration instead.
func defaultChatPolicy() authz.ChatPolicy {
	return authz.ChatPolicy{
		Enabled:              true,
		AllowPromQL:          true,
		AllowK8sRead:         true,
		AllowK8sEvents:       true,
		AllowLogsQuery:       true,
		AllowAWSRead:         true,
		AllowGitHubRead:      true,
		AllowMemoryRead:      true,
		AllowReportRerun:     true,
		AllowArgoCDRead:      true,
		RedactSecrets:        true,
		MaxLogLines:          200,
		MaxPromQLSeries:      50,
		MaxTimeWindowSeconds: 4 * 3600,
		MaxSteps:             10,
		MaxToolCalls:         20,
	}
}

func defaultActionPolicy() authz.ActionPolicy {
	return authz.ActionPolicy{
		Enabled:           true,
		MaxActionsPerCase: 5,
	}
}

func dispatchTool(ctx context.Context, name, argsJSON string, inv *core.Investigation, deps collectors.Deps, runner tools.Runner, actions *tools.ActionLedger, entry *logrus.Entry) tools.ToolResult {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return tools.ToolResult{OK: false, Error: "invalid_tool_args"}
	}

	toolDeps := tools.Deps{
		K8s:       deps.K8s,
		Logs:      deps.Logs,
		Metrics:   deps.Metrics,
		Cloud:     deps.Cloud,
		SCM:       deps.SCM,
		SCMClient: deps.SCMClient,
		Memory:    memory.NewCatalog(nil, memory.DefaultSkills()),
		Runner:    runner,
		Actions:   actions,
		Log:       entry,
	}

	req := tools.Request{
		ChatPolicy:    defaultChatPolicy(),
		ActionPolicy:  defaultActionPolicy(),
		ToolName:      name,
		Args:          args,
		Investigation: inv,
		CaseID:        inv.Alert.Fingerprint,
	}
	return tools.Dispatch(ctx, req, toolDeps)
}

func printJSON(v interface{}) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(payload))
}
