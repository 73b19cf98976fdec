package intent

import "regexp"

// CategoryConfig is one intent category's keyword lexicon, regex patterns,
// prior weight, sub-category lexicons, and semantic reference vector.
// Loaded from a typed config struct rather than hard-coded, so operators
// can retune categories without a rebuild.
type CategoryConfig struct {
	Name            string
	Keywords        []string
	Patterns        []string
	Prior           float64
	SubCategories   map[string][]string
	ReferenceVector []float64
}

// EmotionalLexicons backs the emotional-tone hint each classification
// returns alongside the winning intent.
type EmotionalLexicons struct {
	Aggressive []string
	Persistent []string
	Friendly   []string
	Threshold  int
}

// Config is the full classifier configuration.
type Config struct {
	Categories []CategoryConfig
	Emotional  EmotionalLexicons
}

// compiledCategory is a CategoryConfig with its regex patterns precompiled
// once at construction, rather than per classification.
type compiledCategory struct {
	CategoryConfig
	compiledPatterns []*regexp.Regexp
}

func compileCategories(cats []CategoryConfig) ([]compiledCategory, error) {
	out := make([]compiledCategory, 0, len(cats))
	for _, c := range cats {
		cc := compiledCategory{CategoryConfig: c}
		for _, p := range c.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, err
			}
			cc.compiledPatterns = append(cc.compiledPatterns, re)
		}
		out = append(out, cc)
	}
	return out, nil
}

// DefaultConfig returns a reasonable built-in configuration for the spam
// categories named in the transition table (spec.md §4.1): sales, loan,
// investment, insurance, telecom offers. Operators override via their own
// Config for deployment-specific tuning.
func DefaultConfig() Config {
	cats := []CategoryConfig{
		{
			Name:     "sales",
			Keywords: []string{"discount", "promotion", "limited time", "offer", "优惠", "促销"},
			Patterns: []string{`(?i)special\s+(offer|deal)`},
			Prior:    1.0,
			SubCategories: map[string][]string{
				"retail":  {"store", "product", "商品"},
				"service": {"subscription", "membership", "会员"},
			},
		},
		{
			Name:     "loan_offer",
			Keywords: []string{"loan", "credit", "interest rate", "贷款", "利率", "额度"},
			Patterns: []string{`(?i)\b(apr|annual percentage rate)\b`},
			Prior:    1.0,
			SubCategories: map[string][]string{
				"personal":  {"personal loan", "个人贷款"},
				"mortgage":  {"mortgage", "房贷"},
			},
		},
		{
			Name:     "investment_offer",
			Keywords: []string{"investment", "return", "yield", "stock", "投资", "收益"},
			Patterns: []string{`(?i)guaranteed\s+return`},
			Prior:    1.0,
		},
		{
			Name:     "insurance_offer",
			Keywords: []string{"insurance", "premium", "coverage", "保险", "保费"},
			Patterns: []string{`(?i)life\s+insurance`},
			Prior:    1.0,
		},
		{
			Name:     "telecom_offer",
			Keywords: []string{"data plan", "unlimited minutes", "broadband", "套餐", "流量"},
			Patterns: []string{`(?i)unlimited\s+(data|minutes)`},
			Prior:    1.0,
		},
	}
	// Reference vectors are pure one-hot over the density components: a
	// category only wins the semantic layer when the utterance actually
	// carries that category's keyword density, not merely on length.
	dim := 1 + len(cats)
	for i := range cats {
		vec := make([]float64, dim)
		vec[1+i] = 1.0
		cats[i].ReferenceVector = vec
	}
	return Config{
		Categories: cats,
		Emotional: EmotionalLexicons{
			Aggressive: []string{"angry", "furious", "shut up", "滚", "烦死了"},
			Persistent: []string{"again", "one more", "just listen", "再说一次", "再听我说"},
			Friendly:   []string{"thanks", "please", "appreciate", "谢谢", "麻烦"},
			Threshold:  1,
		},
	}
}
