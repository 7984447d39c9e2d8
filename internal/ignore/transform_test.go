package ignore

import (
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformRulePredict(t *testing.T) {
	rule := GlobRule("*.jpg", "{name}_compressed.jpg")

	out, ok := rule.Predict("/photos/photo.jpg")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/photos", "photo_compressed.jpg"), out)

	_, ok = rule.Predict("/photos/doc.txt")
	assert.False(t, ok)

	// Newlines are legal in file names and must not break the glob.
	out, ok = rule.Predict("/photos/odd\nname.jpg")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/photos", "odd\nname_compressed.jpg"), out)
}

func TestTransformRulePlaceholders(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	rule := TransformRule{
		InputPattern:   regexp.MustCompile(`^.*\.wav$`),
		OutputTemplate: "{name}.{ext}.{date}.{timestamp}.bak",
	}

	out, ok := rule.predictAt("/audio/take1.wav", now)
	require.True(t, ok)
	want := "take1.wav.2026-08-28." + strconv.FormatInt(now.Unix(), 10) + ".bak"
	assert.Equal(t, filepath.Join("/audio", want), out)
}

func TestPredictorMultipleRules(t *testing.T) {
	p := NewPredictor(
		GlobRule("*.jpg", "{name}_thumb.jpg"),
		GlobRule("*.jpg", "{name}_large.jpg"),
		GlobRule("*.png", "{name}_thumb.png"),
	)

	outputs := p.Predict("/pics/cat.jpg")
	assert.Equal(t, []string{
		filepath.Join("/pics", "cat_thumb.jpg"),
		filepath.Join("/pics", "cat_large.jpg"),
	}, outputs)

	assert.Empty(t, p.Predict("/pics/cat.gif"))
}

func TestPredictorFeedsRegistry(t *testing.T) {
	p := NewPredictor(GlobRule("*.jpg", "{name}_compressed.jpg"))
	r := NewRegistry()

	r.AddPredictive(p.Predict("/pics/photo.jpg")...)

	assert.True(t, r.ShouldIgnore(filepath.Join("/pics", "photo_compressed.jpg")))
}
