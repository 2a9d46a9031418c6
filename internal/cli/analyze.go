package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cbcrag/internal/domain"
	"cbcrag/internal/usecase"
)

var (
	analyzePanel string
	analyzeSex   string
	analyzeAge   int

	labFlags = map[string]*float64{}
	labNames = []string{
		"wbc", "rbc", "hgb", "hct", "mcv", "mchc", "rdw", "retic",
		"neut-abs", "neut-pct", "bands", "lymph-abs", "lymph-pct",
		"eos-abs", "plt", "mpv",
	}
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze CBC lab values with grounded clinical narratives",
	Long: `Synthesize clinical queries from structured CBC values and answer them
from the knowledge base. Values you do not pass are treated as not entered;
an explicit 0 is a real reading.

Panels: anemia, neutrophils, platelets, immunodeficiency, quality, full (default).
A panel whose thresholds are not crossed reports "no finding" without any
provider call.

Examples:
  cbcrag analyze --hgb 10.2 --mcv 72 --rdw 17 --sex F --age 34 --panel anemia
  cbcrag analyze --wbc 14.2 --neut-pct 82 --plt 610 --sex M --age 61`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzePanel, "panel", "full", "which analysis to run")
	analyzeCmd.Flags().StringVar(&analyzeSex, "sex", "F", `patient sex ("M" or "F")`)
	analyzeCmd.Flags().IntVar(&analyzeAge, "age", 0, "patient age in years")
	for _, name := range labNames {
		labFlags[name] = analyzeCmd.Flags().Float64(name, 0, "lab value: "+name)
	}
}

// collectValues maps only the flags the user actually set; unset flags stay
// nil so a passed 0 survives as a reading.
func collectValues(cmd *cobra.Command) domain.CBCValues {
	get := func(name string) *float64 {
		if cmd.Flags().Changed(name) {
			return labFlags[name]
		}
		return nil
	}
	return domain.CBCValues{
		WBC:      get("wbc"),
		RBC:      get("rbc"),
		Hgb:      get("hgb"),
		Hct:      get("hct"),
		MCV:      get("mcv"),
		MCHC:     get("mchc"),
		RDW:      get("rdw"),
		Retic:    get("retic"),
		NeutAbs:  get("neut-abs"),
		NeutPct:  get("neut-pct"),
		Bands:    get("bands"),
		LymphAbs: get("lymph-abs"),
		LymphPct: get("lymph-pct"),
		EosAbs:   get("eos-abs"),
		PLT:      get("plt"),
		MPV:      get("mpv"),
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	values := collectValues(cmd)

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	var (
		ans *domain.Answer
		ok  bool
	)
	switch analyzePanel {
	case "anemia":
		ans, ok, err = engine.AnalyzeAnemia(values, analyzeSex)
	case "neutrophils":
		ans, ok, err = engine.AnalyzeNeutrophilAbnormality(values)
	case "platelets":
		ans, ok, err = engine.AnalyzePlateletAbnormality(values)
	case "immunodeficiency":
		ans, ok, err = engine.AnalyzeImmunodeficiencyRisk(values, analyzeSex, analyzeAge)
	case "quality":
		ans, ok, err = engine.AnalyzeSampleQuality(values)
	case "full":
		ans, err = engine.FullAnalysis(values, analyzeSex, analyzeAge)
		ok = true
	default:
		return fmt.Errorf("unknown panel: %q", analyzePanel)
	}
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("No finding: the %s panel thresholds are not crossed by the entered values.\n", analyzePanel)
		if abnormals := usecase.Abnormalities(values, analyzeSex); len(abnormals) > 0 {
			fmt.Println("Other abnormalities present; consider --panel full:")
			for _, a := range abnormals {
				fmt.Println("  -", a)
			}
		}
		return nil
	}

	printAnswer(ans)
	recordAnswer(cfg, analyzePanel, cfg.Generation.Model, ans)
	return nil
}
