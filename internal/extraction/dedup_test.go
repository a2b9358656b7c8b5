package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"transcript-workers/internal/models"
)

func additional(typ, text string) models.RawEntityMention {
	return models.RawEntityMention{Type: typ, Text: text}
}

func TestDedupAdditional(t *testing.T) {
	tests := []struct {
		name     string
		in       []models.RawEntityMention
		wantKeys []string
		wantVals map[string]string
	}{
		{
			name:     "empty",
			wantKeys: []string{},
			wantVals: map[string]string{},
		},
		{
			name: "repeated type gets suffixes",
			in: []models.RawEntityMention{
				additional("grantedRelief", "custody"),
				additional("grantedRelief", "support"),
				additional("grantedRelief", "visitation"),
			},
			wantKeys: []string{"grantedRelief", "grantedRelief-2", "grantedRelief-3"},
			wantVals: map[string]string{
				"grantedRelief":   "custody",
				"grantedRelief-2": "support",
				"grantedRelief-3": "visitation",
			},
		},
		{
			name: "interleaved types keep first-seen order",
			in: []models.RawEntityMention{
				additional("caseNumber", "A-1"),
				additional("relief", "r1"),
				additional("caseNumber", "A-2"),
				additional("courtroom", "4B"),
			},
			wantKeys: []string{"caseNumber", "relief", "caseNumber-2", "courtroom"},
			wantVals: map[string]string{
				"caseNumber":   "A-1",
				"relief":       "r1",
				"caseNumber-2": "A-2",
				"courtroom":    "4B",
			},
		},
		{
			name: "literal suffixed type does not get overwritten",
			in: []models.RawEntityMention{
				additional("relief", "first"),
				additional("relief-2", "literal"),
				additional("relief", "second"),
			},
			wantKeys: []string{"relief", "relief-2", "relief-3"},
			wantVals: map[string]string{
				"relief":   "first",
				"relief-2": "literal",
				"relief-3": "second",
			},
		},
		{
			name: "literal type colliding with a generated key is suffixed itself",
			in: []models.RawEntityMention{
				additional("a", "1"),
				additional("a", "2"),
				additional("a-2", "3"),
			},
			wantKeys: []string{"a", "a-2", "a-2-2"},
			wantVals: map[string]string{
				"a":     "1",
				"a-2":   "2",
				"a-2-2": "3",
			},
		},
		{
			name: "numbering continues after a bump",
			in: []models.RawEntityMention{
				additional("relief", "first"),
				additional("relief-2", "literal"),
				additional("relief", "second"),
				additional("relief", "third"),
			},
			wantKeys: []string{"relief", "relief-2", "relief-3", "relief-4"},
			wantVals: map[string]string{
				"relief-3": "second",
				"relief-4": "third",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := DedupAdditional(tt.in)
			assert.Equal(t, tt.wantKeys, out.Keys())
			for k, v := range tt.wantVals {
				got, ok := out.Get(k)
				assert.True(t, ok, k)
				assert.Equal(t, v, got)
			}
		})
	}
}

func TestDedupAdditional_JSONOrder(t *testing.T) {
	out := DedupAdditional([]models.RawEntityMention{
		additional("zeta", "1"),
		additional("alpha", "2"),
		additional("zeta", "3"),
	})

	b, err := out.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"zeta":"1","alpha":"2","zeta-2":"3"}`, string(b))
	assert.Equal(t, `{"zeta":"1","alpha":"2","zeta-2":"3"}`, string(b))
}

func TestDedupAdditional_CollisionJSONOrder(t *testing.T) {
	out := DedupAdditional([]models.RawEntityMention{
		additional("a", "1"),
		additional("a", "2"),
		additional("a-2", "3"),
	})

	b, err := out.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `{"a":"1","a-2":"2","a-2-2":"3"}`, string(b))
}
