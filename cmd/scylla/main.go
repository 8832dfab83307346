package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bytemomo/scylla/internal/adapter/jsonreport"
	"bytemomo/scylla/internal/adapter/logger"
	"bytemomo/scylla/internal/adapter/yamlconfig"
	"bytemomo/scylla/internal/domain"
	"bytemomo/scylla/internal/intelligence"
	"bytemomo/scylla/internal/orchestrator"
	"bytemomo/scylla/internal/risk"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to config YAML")
		targetsPath = flag.String("targets", "", "Path to targets YAML (required unless -addresses is set)")
		addresses   = flag.String("addresses", "", "Comma-separated IP addresses to scan")
		mode        = flag.String("mode", string(domain.ModePortScan), "Scan mode")
		intensity   = flag.String("intensity", "", "Scan intensity (defaults from config)")
		outDir      = flag.String("out", "./scylla-results", "Output directory")
		help        = flag.Bool("help", false, "Print program usage")
	)
	flag.Parse()

	if (*targetsPath == "" && *addresses == "") || *help {
		flag.Usage()
		os.Exit(2)
	}

	logger.SetLoggerToStructured(logrus.InfoLevel, fmt.Sprintf("%s/scylla.log", *outDir))

	if err := run(*configPath, *targetsPath, *addresses, *mode, *intensity, *outDir); err != nil {
		logrus.WithError(err).Fatal("Failed to run scan batch")
	}
}

func run(configPath, targetsPath, addresses, mode, intensity, outDir string) error {
	log := logrus.WithFields(logrus.Fields{
		"config_path": configPath,
		"mode":        mode,
	})
	log.Info("Starting scan batch")

	cfg, err := yamlconfig.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(lvl)
	}

	targets, err := loadTargets(targetsPath, addresses)
	if err != nil {
		return err
	}
	log = log.WithField("target_count", len(targets))

	resultDir := fmt.Sprintf("%s/%d", outDir, time.Now().Unix())
	reporter := jsonreport.New(resultDir)

	results, err := runBatch(log, cfg, targets, domain.ScanMode(mode), domain.ScanIntensity(intensity))
	if err != nil {
		return err
	}

	return report(log, cfg, reporter, results)
}

func loadTargets(targetsPath, addresses string) ([]domain.ScanTarget, error) {
	if targetsPath != "" {
		return yamlconfig.LoadTargets(targetsPath)
	}

	var targets []domain.ScanTarget
	for _, addr := range splitCSV(addresses) {
		targets = append(targets, domain.ScanTarget{Address: addr, Kind: domain.AddressIP})
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets specified")
	}
	return targets, nil
}

func runBatch(log *logrus.Entry, cfg domain.Config, targets []domain.ScanTarget, mode domain.ScanMode, intensity domain.ScanIntensity) ([]domain.ScanResult, error) {
	orch := orchestrator.New(cfg, nil)

	progress := func(percent int, message string) {
		log.WithField("percent", percent).Info(message)
	}

	results, err := orch.RunBatch(context.Background(), targets, mode, intensity, progress)
	if err != nil {
		return nil, fmt.Errorf("failed batch execution: %w", err)
	}

	log.WithField("result_count", len(results)).Info("Scan batch finished")
	return results, nil
}

func report(log *logrus.Entry, cfg domain.Config, reporter *jsonreport.Writer, results []domain.ScanResult) error {
	log.Info("Starting reporting")

	for _, res := range results {
		if err := reporter.Save(res); err != nil {
			log.WithError(err).WithField("target", res.Target).Error("Could not save result")
		}
	}

	engine := risk.NewEngine(cfg.Risk)
	assessment, recommendations := engine.AnalyzeBatch(results)

	rep := jsonreport.Report{
		Results:         results,
		Assessment:      assessment,
		Recommendations: recommendations,
	}

	if cfg.Narrative != nil {
		rep.Narrative = narrate(log, *cfg.Narrative, results, assessment)
	}

	path, err := reporter.Aggregate(rep)
	if err != nil {
		return fmt.Errorf("cannot report results: %w", err)
	}
	log.WithField("report_path", path).Info("Report written")

	fmt.Printf("Scanned %d targets: risk %s (score %d), %d open ports, %d services\n",
		len(results), assessment.Level, assessment.Score,
		assessment.TotalOpenPorts, assessment.UniqueServices)
	for _, rec := range recommendations {
		fmt.Printf("   [%s] %s: %s (~%d min)\n", rec.Priority, rec.Action, rec.Description, rec.EstimatedMinutes)
	}
	return nil
}

func narrate(log *logrus.Entry, settings domain.NarrativeSettings, results []domain.ScanResult, assessment domain.RiskAssessment) *intelligence.Analysis {
	client := intelligence.NewClient(settings)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	analysis, err := client.AnalyzeResults(ctx, results, assessment)
	if err != nil {
		log.WithError(err).Warn("Narrative analysis unavailable")
		return nil
	}
	return analysis
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
