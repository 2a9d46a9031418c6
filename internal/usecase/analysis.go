package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cbcrag/internal/domain"
)

// Clinical reference cutoffs used to decide whether a panel warrants a
// retrieval-and-generation call at all. Values within range return no
// finding without touching any provider.
const (
	hgbLowMale    = 13.5
	hgbLowFemale  = 12.0
	hgbHighMale   = 17.5
	hgbHighFemale = 15.5

	ancHigh = 7.7
	ancLow  = 1.8

	pltLow  = 150
	pltHigh = 400

	wbcHigh = 11.0
	wbcLow  = 4.5

	alcLow  = 1.0
	alcHigh = 4.8

	mcvLow  = 80
	mcvHigh = 100

	// defaultTemperature keeps clinical answers close to the passages.
	defaultTemperature = 0.2
)

// AnalyzeAnemia checks hemoglobin against the sex-specific lower bound and,
// when anemia is present, asks for classification, likely causes and workup.
// ok is false when no threshold is crossed; no provider call is made then.
func (e *Engine) AnalyzeAnemia(values domain.CBCValues, sex string) (answer *domain.Answer, ok bool, err error) {
	lo := hgbLowFemale
	if sex == "M" {
		lo = hgbLowMale
	}
	if values.Hgb == nil || *values.Hgb >= lo {
		return nil, false, nil
	}

	query := fmt.Sprintf(`Patient: %s, Hgb=%s g/dL, MCV=%s fL, RDW=%s%%, Reticulocytes=%s%%
Classify the type of anemia (microcytic/normocytic/macrocytic), identify the most likely causes,
explain the pathophysiology, and recommend specific next investigations.
What does the RDW tell us? What is the reticulocyte production index indicating?`,
		sex, fmtVal(values.Hgb), fmtVal(values.MCV), fmtVal(values.RDW), fmtVal(values.Retic))

	answer, err = e.GenerateWithRAG(query, 5, "CBC values: "+enteredJSON(values), defaultTemperature)
	return answer, true, err
}

// AnalyzeNeutrophilAbnormality evaluates the absolute neutrophil count
// (derived from WBC and percentage when needed) against the neutrophilia and
// neutropenia cutoffs.
func (e *Engine) AnalyzeNeutrophilAbnormality(values domain.CBCValues) (answer *domain.Answer, ok bool, err error) {
	anc := values.ANC()
	if anc == nil {
		return nil, false, nil
	}

	var condition, query string
	switch {
	case *anc > ancHigh:
		condition = "neutrophilia"
		query = fmt.Sprintf(`WBC=%s ×10⁹/L, ANC=%.2f ×10⁹/L, Bands=%s%%.
Evaluate this neutrophilia. Classify severity, enumerate the most likely causes in order,
differentiate reactive from neoplastic causes, indicate red flags for CML or other MPNs,
and provide specific workup steps.`, fmtVal(values.WBC), *anc, fmtVal(values.Bands))
	case *anc < ancLow:
		condition = "neutropenia"
		query = fmt.Sprintf(`WBC=%s ×10⁹/L, ANC=%.2f ×10⁹/L.
Evaluate this neutropenia. Classify severity and infection risk, list common causes
by category (drugs, autoimmune, congenital, infectious, marrow failure),
and provide a stepwise evaluation approach.`, fmtVal(values.WBC), *anc)
	default:
		return nil, false, nil
	}

	ctx := fmt.Sprintf("Condition: %s. CBC: %s", condition, enteredJSON(values))
	answer, err = e.GenerateWithRAG(query, 4, ctx, defaultTemperature)
	return answer, true, err
}

// AnalyzePlateletAbnormality evaluates the platelet count against the
// thrombocytopenia and thrombocytosis cutoffs.
func (e *Engine) AnalyzePlateletAbnormality(values domain.CBCValues) (answer *domain.Answer, ok bool, err error) {
	if values.PLT == nil {
		return nil, false, nil
	}

	var query string
	switch {
	case *values.PLT < pltLow:
		query = fmt.Sprintf(`Platelet count=%s ×10⁹/L, MPV=%s fL.
Evaluate this thrombocytopenia. Address pseudothrombocytopenia first.
Classify severity. Use MPV to guide differential diagnosis.
List the most common causes and their distinguishing features.
What urgent steps are needed if platelets are critically low?`, fmtVal(values.PLT), fmtVal(values.MPV))
	case *values.PLT > pltHigh:
		query = fmt.Sprintf(`Platelet count=%s ×10⁹/L.
Evaluate this thrombocytosis. Distinguish reactive from clonal causes.
At what threshold should primary thrombocytosis be suspected?
What mutations should be tested and when?`, fmtVal(values.PLT))
	default:
		return nil, false, nil
	}

	answer, err = e.GenerateWithRAG(query, 4, "CBC: "+enteredJSON(values), defaultTemperature)
	return answer, true, err
}

// AnalyzeImmunodeficiencyRisk screens the panel for patterns suggesting
// primary immunodeficiency. It needs at least one of ALC, ANC or platelets
// to have anything to screen; otherwise it returns no finding.
func (e *Engine) AnalyzeImmunodeficiencyRisk(values domain.CBCValues, sex string, age int) (answer *domain.Answer, ok bool, err error) {
	alc := values.ALC()
	if alc == nil && values.NeutAbs == nil && values.PLT == nil {
		return nil, false, nil
	}

	query := fmt.Sprintf(`Patient: %s, age %d years. ALC=%s ×10⁹/L, ANC=%s ×10⁹/L,
Platelets=%s ×10⁹/L, MPV=%s fL.
Screen this CBC for primary immunodeficiency disorders (PID).
What patterns in the CBC suggest specific PIDs?
For this patient, what are the red flags and which conditions should be ruled out first?
Describe the stepwise evaluation including flow cytometry and immunoglobulin testing.`,
		sex, age, fmtVal(alc), fmtVal(values.NeutAbs), fmtVal(values.PLT), fmtVal(values.MPV))

	ctx := fmt.Sprintf("Patient sex: %s, age: %d. CBC: %s", sex, age, enteredJSON(values))
	answer, err = e.GenerateWithRAG(query, 4, ctx, defaultTemperature)
	return answer, true, err
}

// AnalyzeSampleQuality applies the Rule of Threes consistency check to the
// red cell indices. It needs at least one red cell value to assess.
func (e *Engine) AnalyzeSampleQuality(values domain.CBCValues) (answer *domain.Answer, ok bool, err error) {
	if values.RBC == nil && values.Hgb == nil && values.Hct == nil {
		return nil, false, nil
	}

	query := fmt.Sprintf(`CBC values: RBC=%s, Hgb=%s g/dL, HCT=%s%%, MCHC=%s g/dL,
WBC=%s ×10⁹/L, Platelets=%s ×10⁹/L.
Apply the Rule of Threes quality check. Are these values internally consistent?
Identify any potential pre-analytical errors based on these results.
What collection or storage problems could produce these results?
Provide specific advice on recollection and quality assurance.`,
		fmtVal(values.RBC), fmtVal(values.Hgb), fmtVal(values.Hct),
		fmtVal(values.MCHC), fmtVal(values.WBC), fmtVal(values.PLT))

	answer, err = e.GenerateWithRAG(query, 3, "Sample quality assessment request.", defaultTemperature)
	return answer, true, err
}

// FullAnalysis always fires: it aggregates every detected abnormality across
// all panels into one composite query requesting prioritized findings, a
// unifying differential, pathophysiology, critical alerts, an investigation
// plan and a sample-quality consistency check.
func (e *Engine) FullAnalysis(values domain.CBCValues, sex string, age int) (*domain.Answer, error) {
	abnormals := Abnormalities(values, sex)

	abnormalLine := "None identified"
	if len(abnormals) > 0 {
		abnormalLine = strings.Join(abnormals, "; ")
	}

	sexWord := "female"
	if sex == "M" {
		sexWord = "male"
	}

	query := fmt.Sprintf(`Complete CBC analysis for a %d-year-old %s patient.
Identified abnormalities: %s.
CBC values: %s.

Provide a comprehensive clinical analysis:
1. PRIORITIZED FINDINGS: Rank abnormalities by clinical urgency
2. UNIFIED DIFFERENTIAL: What single diagnosis or combination best explains all findings?
3. PATHOPHYSIOLOGY: Link the CBC pattern to underlying mechanisms
4. CRITICAL ALERTS: Any values requiring immediate action?
5. SEQUENTIAL INVESTIGATION PLAN: Step-by-step with rationale
6. COLLECTION QUALITY: Any CBC internal inconsistencies suggesting pre-analytical error?`,
		age, sexWord, abnormalLine, enteredJSON(values))

	ctx := fmt.Sprintf("Patient: %s, age %d. Abnormalities: [%s]", sex, age, strings.Join(abnormals, ", "))
	return e.GenerateWithRAG(query, 6, ctx, defaultTemperature)
}

// Abnormalities returns a human-readable label for every reference-range
// violation in the panel. Entered zeros count as readings, not as absent.
func Abnormalities(values domain.CBCValues, sex string) []string {
	hgbLo, hgbHi := hgbLowFemale, hgbHighFemale
	if sex == "M" {
		hgbLo, hgbHi = hgbLowMale, hgbHighMale
	}

	var abnormals []string
	add := func(format string, v float64) {
		abnormals = append(abnormals, fmt.Sprintf(format, fmtFloat(v)))
	}

	if values.Hgb != nil {
		if *values.Hgb < hgbLo {
			add("Anemia (Hgb %s g/dL)", *values.Hgb)
		}
		if *values.Hgb > hgbHi {
			add("Erythrocytosis (Hgb %s g/dL)", *values.Hgb)
		}
	}
	if values.WBC != nil {
		if *values.WBC > wbcHigh {
			add("Leukocytosis (WBC %s ×10⁹/L)", *values.WBC)
		}
		if *values.WBC < wbcLow {
			add("Leukopenia (WBC %s ×10⁹/L)", *values.WBC)
		}
	}
	if anc := values.ANC(); anc != nil {
		if *anc > ancHigh {
			add("Neutrophilia (ANC %s)", *anc)
		}
		if *anc < ancLow {
			add("Neutropenia (ANC %s)", *anc)
		}
	}
	if values.PLT != nil {
		if *values.PLT < pltLow {
			add("Thrombocytopenia (PLT %s)", *values.PLT)
		}
		if *values.PLT > pltHigh {
			add("Thrombocytosis (PLT %s)", *values.PLT)
		}
	}
	if alc := values.ALC(); alc != nil {
		if *alc < alcLow {
			add("Lymphopenia (ALC %s)", *alc)
		}
		if *alc > alcHigh {
			add("Lymphocytosis (ALC %s)", *alc)
		}
	}
	if values.MCV != nil {
		if *values.MCV < mcvLow {
			add("Microcytosis (MCV %s fL)", *values.MCV)
		}
		if *values.MCV > mcvHigh {
			add("Macrocytosis (MCV %s fL)", *values.MCV)
		}
	}

	return abnormals
}

// enteredJSON serializes the entered values for the additional-context block.
// Map keys serialize in sorted order, so the output is deterministic.
func enteredJSON(values domain.CBCValues) string {
	data, err := json.Marshal(values.Entered())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// fmtVal renders an optional value for a query string, "n/a" when absent.
func fmtVal(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmtFloat(*p)
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
