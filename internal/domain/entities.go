package domain

// Chunk is one retrievable unit of reference text with metadata.
// Chunks are loaded once from the knowledge base and never mutated.
type Chunk struct {
	Section  string   `json:"section"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
	Text     string   `json:"text"`
}

// RetrievalResult is a chunk annotated with a similarity score.
// Method identifies the retrieval path ("vector" or "keyword").
type RetrievalResult struct {
	Chunk  Chunk   `json:"chunk"`
	Score  float64 `json:"score"`
	Method string  `json:"method"`
}

// Source is a 1-indexed attribution entry for a generated answer.
type Source struct {
	Index   int     `json:"index"`
	Title   string  `json:"title"`
	Section string  `json:"section"`
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
}

// Answer is the output of one retrieve-and-generate invocation.
type Answer struct {
	Text      string            `json:"answer"`
	Sources   []Source          `json:"sources"`
	Retrieved []RetrievalResult `json:"retrieved_chunks"`
	Query     string            `json:"query"`
}

// CBCValues holds one complete blood count panel. Every field is optional:
// a nil pointer means the value was not entered, which is distinct from a
// legitimate zero reading (an eosinophil count can really be 0).
type CBCValues struct {
	WBC      *float64 // white blood cells, ×10⁹/L
	RBC      *float64 // red blood cells, ×10¹²/L
	Hgb      *float64 // hemoglobin, g/dL
	Hct      *float64 // hematocrit, %
	MCV      *float64 // mean corpuscular volume, fL
	MCHC     *float64 // mean corpuscular hemoglobin concentration, g/dL
	RDW      *float64 // red cell distribution width, %
	Retic    *float64 // reticulocytes, %
	NeutAbs  *float64 // absolute neutrophil count, ×10⁹/L
	NeutPct  *float64 // neutrophils, %
	Bands    *float64 // band forms, %
	LymphAbs *float64 // absolute lymphocyte count, ×10⁹/L
	LymphPct *float64 // lymphocytes, %
	EosAbs   *float64 // absolute eosinophil count, ×10⁹/L
	PLT      *float64 // platelets, ×10⁹/L
	MPV      *float64 // mean platelet volume, fL
}

// Entered returns the entered values keyed by parameter name. Zero readings
// are included; only nil fields are absent.
func (v CBCValues) Entered() map[string]float64 {
	m := make(map[string]float64)
	put := func(name string, p *float64) {
		if p != nil {
			m[name] = *p
		}
	}
	put("wbc", v.WBC)
	put("rbc", v.RBC)
	put("hgb", v.Hgb)
	put("hct", v.Hct)
	put("mcv", v.MCV)
	put("mchc", v.MCHC)
	put("rdw", v.RDW)
	put("retic", v.Retic)
	put("neut_abs", v.NeutAbs)
	put("neut_pct", v.NeutPct)
	put("bands", v.Bands)
	put("lymph_abs", v.LymphAbs)
	put("lymph_pct", v.LymphPct)
	put("eos_abs", v.EosAbs)
	put("plt", v.PLT)
	put("mpv", v.MPV)
	return m
}

// ANC returns the absolute neutrophil count, deriving it from WBC and the
// neutrophil percentage when no absolute count was entered.
func (v CBCValues) ANC() *float64 {
	if v.NeutAbs != nil {
		return v.NeutAbs
	}
	if v.WBC != nil && v.NeutPct != nil {
		anc := *v.WBC * *v.NeutPct / 100
		return &anc
	}
	return nil
}

// ALC returns the absolute lymphocyte count, deriving it from WBC and the
// lymphocyte percentage when no absolute count was entered.
func (v CBCValues) ALC() *float64 {
	if v.LymphAbs != nil {
		return v.LymphAbs
	}
	if v.WBC != nil && v.LymphPct != nil {
		alc := *v.WBC * *v.LymphPct / 100
		return &alc
	}
	return nil
}
