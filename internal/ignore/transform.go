package ignore

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TransformRule describes how a processed input file maps to the
// output file a consumer is expected to produce. Rules are stateless:
// they only compute predicted paths, they never touch the disk.
//
// The output template supports the placeholders {name} (base name
// without extension), {ext} (extension without the dot), {timestamp}
// (unix seconds) and {date} (YYYY-MM-DD).
type TransformRule struct {
	InputPattern   *regexp.Regexp
	OutputTemplate string
}

// Predict returns the predicted output path for input, resolved in
// the input's directory, and whether the rule matched at all.
func (r TransformRule) Predict(input string) (string, bool) {
	return r.predictAt(input, time.Now())
}

func (r TransformRule) predictAt(input string, now time.Time) (string, bool) {
	base := filepath.Base(input)
	if !r.InputPattern.MatchString(base) {
		return "", false
	}

	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	name := strings.TrimSuffix(base, filepath.Ext(base))

	out := r.OutputTemplate
	out = strings.ReplaceAll(out, "{name}", name)
	out = strings.ReplaceAll(out, "{ext}", ext)
	out = strings.ReplaceAll(out, "{timestamp}", strconv.FormatInt(now.Unix(), 10))
	out = strings.ReplaceAll(out, "{date}", now.Format("2006-01-02"))

	return filepath.Join(filepath.Dir(input), out), true
}

// Predictor computes expected output paths from a rule set. Multiple
// rules may fire independently for one input, each yielding its own
// prediction. Predictions are advisory: a prediction for an output
// that is never produced simply stays in the predictive set.
type Predictor struct {
	rules []TransformRule
}

func NewPredictor(rules ...TransformRule) *Predictor {
	return &Predictor{rules: rules}
}

// Predict returns every prediction whose rule matches input.
func (p *Predictor) Predict(input string) []string {
	var outputs []string
	for _, rule := range p.rules {
		if out, ok := rule.Predict(input); ok {
			outputs = append(outputs, out)
		}
	}
	return outputs
}

// GlobRule builds a TransformRule from a glob-style input pattern,
// the form used in configuration files.
func GlobRule(inputGlob, outputTemplate string) TransformRule {
	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range inputGlob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return TransformRule{
		InputPattern:   regexp.MustCompile(b.String()),
		OutputTemplate: outputTemplate,
	}
}
