package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractExplicitCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		detail string
		want   Set
	}{
		{
			name:   "registration form",
			detail: "Registration form with 12 fields, requires login and file upload. Users can create and edit their profile.",
			want:   Set{Fields: 12, HasUpload: true, HasAuthRole: true, Create: true, Update: true},
		},
		{
			name:   "integration sync",
			detail: "Sync invoices with 3 external systems nightly.",
			want:   Set{Integrations: 3},
		},
		{
			name:   "approval workflow",
			detail: "Approval workflow with 5 steps and read-only history view.",
			want:   Set{WorkflowSteps: 5, Read: true},
		},
		{
			name:   "largest explicit count wins",
			detail: "Main form has 20 fields, summary panel shows 6 fields.",
			want:   Set{Fields: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Extract(tt.detail))
		})
	}
}

func TestExtractKeywordFallback(t *testing.T) {
	t.Parallel()

	s := Extract("Integrate with the payment gateway and CRM.")
	assert.Equal(t, 3, s.Integrations) // integrate + payment gateway + crm
	assert.Zero(t, s.Fields)

	s = Extract("Simple static page.")
	assert.Equal(t, Set{}, s)
}

func TestExtractCRUDToken(t *testing.T) {
	t.Parallel()

	s := Extract("Admin CRUD screen for product catalog.")
	assert.True(t, s.Create)
	assert.True(t, s.Read)
	assert.True(t, s.Update)
	assert.True(t, s.Delete)
	assert.Equal(t, 4, s.CRUDCount())
}

func TestExtractIndividualCRUDWords(t *testing.T) {
	t.Parallel()

	s := Extract("Users can view and delete their drafts.")
	assert.False(t, s.Create)
	assert.True(t, s.Read)
	assert.False(t, s.Update)
	assert.True(t, s.Delete)
	assert.Equal(t, 2, s.CRUDCount())
}

func TestScoreWeights(t *testing.T) {
	t.Parallel()

	s := Set{Fields: 10, Integrations: 1, WorkflowSteps: 2, HasUpload: true, HasAuthRole: true, Create: true, Read: true}
	// 1.8*10 + 15*1 + 6*2 + 6 + 10 + 4*2 = 18+15+12+6+10+8 = 69
	assert.InDelta(t, 69.0, Score(s), 1e-9)

	assert.Zero(t, Score(Set{}))
}

func TestScoreCap(t *testing.T) {
	t.Parallel()

	s := Set{Fields: 100, Integrations: 10}
	assert.Equal(t, 100.0, Score(s))
}

func TestSizeFromScoreBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{0, "XS"},
		{8, "XS"},
		{8.1, "S"},
		{18, "S"},
		{18.1, "M"},
		{32, "M"},
		{32.1, "L"},
		{55, "L"},
		{55.1, "XL"},
		{100, "XL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(SizeFromScore(tt.score)), "score %v", tt.score)
	}
}
