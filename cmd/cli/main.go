package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"grant-simulation/internal/analysis"
	"grant-simulation/internal/config"
	"grant-simulation/internal/data"
	"grant-simulation/internal/logging"
	"grant-simulation/internal/model"
	"grant-simulation/internal/simulation"
	"grant-simulation/internal/valuation"

	"github.com/leekchan/accounting"
	"github.com/phuslu/log"
	"github.com/schollz/progressbar/v3"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "simulate":
		err = cmdSimulate(ctx, os.Args[2:])
	case "infer":
		err = cmdInfer(ctx, os.Args[2:])
	case "coverage":
		err = cmdCoverage(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msg("CLI: run failed, no output written")
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli simulate --config configs/simulation.example.yaml --data observations.csv --out out/simulated.csv")
	fmt.Println("  cli infer    --config configs/simulation.example.yaml --data observations.csv --predictions predictions.csv --out out/valued.csv")
	fmt.Println("  cli coverage --config configs/simulation.example.yaml --data observations.csv --out out/coverage.csv --top 10")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - simulate writes P{i}_month_st, P{i}_month_opt, P{i}_year per iteration (plus P{i}_1..12 with --full-path)")
	fmt.Println("  - infer also writes P{i}_opt_pred and P{i}_st_pred from the predicted payoffs")
	fmt.Println("  - coverage summarizes simulated year-end prices against the realized S1")
}

// runFlags are shared by all subcommands; zero values keep the config file.
type runFlags struct {
	cfgPath    *string
	dataPath   *string
	outPath    *string
	iterations *int
	seed       *int64
	policy     *string
	workers    *int
	fullPath   *bool
	strict     *bool
	quiet      *bool
}

func bindRunFlags(fs *flag.FlagSet) *runFlags {
	return &runFlags{
		cfgPath:    fs.String("config", os.Getenv("SIM_CONFIG"), "Path to YAML config (default $SIM_CONFIG)"),
		dataPath:   fs.String("data", "", "Observations CSV or JSON (overrides input.observations)"),
		outPath:    fs.String("out", "", "Output CSV path (overrides the config output)"),
		iterations: fs.Int("iterations", 0, "Number of simulated paths per observation"),
		seed:       fs.Int64("seed", -1, "Random seed (-1 keeps the config value)"),
		policy:     fs.String("policy", "", "Stream policy: shared or substream"),
		workers:    fs.Int("workers", 0, "Parallel iterations for the substream policy (0=GOMAXPROCS)"),
		fullPath:   fs.Bool("full-path", false, "Keep all 12 monthly prices per iteration"),
		strict:     fs.Bool("strict", false, "Reject grant dates outside the simulated window"),
		quiet:      fs.Bool("quiet", false, "Disable the progress bar"),
	}
}

// load resolves the config, applies flag overrides and reads the panel.
func (f *runFlags) load() (*config.Config, *model.Panel, error) {
	cfg := config.Default()
	if *f.cfgPath != "" {
		var err error
		if cfg, err = config.Load(*f.cfgPath); err != nil {
			return nil, nil, err
		}
	}
	override := config.SimulationConfig{
		Iterations:        *f.iterations,
		Policy:            *f.policy,
		Workers:           *f.workers,
		KeepFullPath:      *f.fullPath,
		StrictGrantWindow: *f.strict,
	}
	if *f.seed >= 0 {
		seed := uint64(*f.seed)
		override.Seed = &seed
	}
	cfg.Simulation = config.MergeSimulation(cfg.Simulation, override)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logging.Setup(cfg.Log.Level, logging.FormatConsole)

	path := cfg.Input.Observations
	if *f.dataPath != "" {
		path = *f.dataPath
	}
	if path == "" {
		return nil, nil, fmt.Errorf("no observations: set --data or input.observations")
	}
	var (
		panel *model.Panel
		err   error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		panel, err = data.LoadObservationsJSON(path, cfg.Input.DateLayouts)
	} else {
		panel, err = data.LoadObservationsCSV(path, cfg.Input.DateLayouts)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load observations %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("rows", panel.Len()).Msg("CLI: observations loaded")
	return cfg, panel, nil
}

func (f *runFlags) simulate(ctx context.Context, cfg *config.Config, panel *model.Panel) (*simulation.Table, error) {
	opts := cfg.Simulation.Options()
	if !*f.quiet {
		bar := progressBar(opts.Iterations)
		defer bar.Finish()
		opts.Progress = func(done, _ int) { _ = bar.Set(done) }
	}
	return simulation.New(opts, &log.DefaultLogger).Run(ctx, panel)
}

func cmdSimulate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	rf := bindRunFlags(fs)
	_ = fs.Parse(args)

	cfg, panel, err := rf.load()
	if err != nil {
		return err
	}
	tbl, err := rf.simulate(ctx, cfg, panel)
	if err != nil {
		return err
	}
	out := pick(*rf.outPath, cfg.Output.Table, "out/simulated.csv")
	if err := writeTable(out, tbl, cfg); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows x %d simulated columns to %s\n", tbl.Rows(), len(tbl.Schema.ExtractColumns()), out)
	return nil
}

func cmdInfer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("infer", flag.ExitOnError)
	rf := bindRunFlags(fs)
	predPath := fs.String("predictions", "", "Predictions CSV (overrides input.predictions)")
	_ = fs.Parse(args)

	cfg, panel, err := rf.load()
	if err != nil {
		return err
	}
	path := pick(*predPath, cfg.Input.Predictions, "")
	if path == "" {
		return fmt.Errorf("no predictions: set --predictions or input.predictions")
	}
	inputs, err := data.LoadPredictionsCSV(path)
	if err != nil {
		return fmt.Errorf("load predictions %s: %w", path, err)
	}
	// Join and validate before spending time on simulation.
	if _, err := valuation.Resolve(panel, inputs); err != nil {
		return err
	}

	tbl, err := rf.simulate(ctx, cfg, panel)
	if err != nil {
		return err
	}
	rep, err := valuation.New(cfg.Valuation.Workers, &log.DefaultLogger).InferGrants(ctx, tbl, inputs)
	if err != nil {
		return err
	}
	out := pick(*rf.outPath, cfg.Output.Table, "out/valued.csv")
	if err := writeTable(out, tbl, cfg); err != nil {
		return err
	}

	ac := accounting.Accounting{Symbol: "$", Precision: 2}
	fmt.Printf("Wrote %d rows to %s\n", tbl.Rows(), out)
	fmt.Printf("Predicted payoff total=%s cells=%d singular option=%d stock=%d\n",
		ac.FormatMoney(rep.TotalPredicted.InexactFloat64()), rep.Cells(), rep.SingularOption, rep.SingularStock)
	return nil
}

func cmdCoverage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("coverage", flag.ExitOnError)
	rf := bindRunFlags(fs)
	extract := fs.String("extract", string(model.ExtractYearEnd), "Extract to summarize: month_st, month_opt or year")
	top := fs.Int("top", 10, "Print the N widest simulated ranges (0=none)")
	_ = fs.Parse(args)

	kind := model.ExtractKind(*extract)
	switch kind {
	case model.ExtractStockGrant, model.ExtractOptionGrant, model.ExtractYearEnd:
	default:
		return fmt.Errorf("unknown extract %q", *extract)
	}

	cfg, panel, err := rf.load()
	if err != nil {
		return err
	}
	tbl, err := rf.simulate(ctx, cfg, panel)
	if err != nil {
		return err
	}
	covs := analysis.CoverageOf(tbl, kind)

	out := pick(*rf.outPath, cfg.Output.Summary, "out/coverage.csv")
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	if err := analysis.WriteSummaryCSV(out, covs); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s (out-of-range rate %.3f)\n", len(covs), out, analysis.OORRate(covs))

	if *top <= 0 {
		return nil
	}
	ranked := analysis.RankByRange(covs)
	if *top < len(ranked) {
		ranked = ranked[:*top]
	}
	ac := accounting.Accounting{Symbol: "$", Precision: 2}
	fmt.Printf("%-4s %-10s %-6s %-12s %-12s %-12s %-12s %-3s\n", "rank", "permno", "fyear", "S1", "mean", "min", "max", "oor")
	for i, c := range ranked {
		fmt.Printf("%-4d %-10s %-6s %-12s %-12s %-12s %-12s %-3d\n",
			i+1, c.Key.Permno, c.Key.FYear,
			ac.FormatMoney(c.S1), ac.FormatMoney(c.Mean), ac.FormatMoney(c.Min), ac.FormatMoney(c.Max), c.OOR)
	}
	return nil
}

func writeTable(out string, tbl *simulation.Table, cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return simulation.WriteTableCSV(out, tbl, cfg.Output.Layouts())
}

func pick(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func progressBar(length int) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		length,
		progressbar.OptionSetDescription("simulating"),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
