package salesforce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOpportunityByName(t *testing.T) {
	t.Run("returns opportunity when found", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, soql string, out any) error {
				assert.Contains(t, soql, "Name = 'Globex - Invoice Portal'")
				assert.Contains(t, soql, "SELECT Id, Name")

				opps := out.(*[]Opportunity)
				*opps = []Opportunity{
					{ID: "006xx", Name: "Globex - Invoice Portal", StageName: "Proposal", Amount: 84500},
				}
				return nil
			},
		}

		opp, err := FindOpportunityByName(context.Background(), mock, "Globex - Invoice Portal")
		require.NoError(t, err)
		require.NotNil(t, opp)
		assert.Equal(t, "006xx", opp.ID)
		assert.Equal(t, "Proposal", opp.StageName)
		assert.Equal(t, 84500.0, opp.Amount)
	})

	t.Run("returns nil when not found", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, _ string, out any) error {
				opps := out.(*[]Opportunity)
				*opps = []Opportunity{}
				return nil
			},
		}

		opp, err := FindOpportunityByName(context.Background(), mock, "No Such Deal")
		require.NoError(t, err)
		assert.Nil(t, opp)
	})

	t.Run("returns error on query failure", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, _ string, _ any) error {
				return errors.New("connection refused")
			},
		}

		opp, err := FindOpportunityByName(context.Background(), mock, "Globex - Invoice Portal")
		assert.Error(t, err)
		assert.Nil(t, opp)
		assert.Contains(t, err.Error(), "find opportunity by name")
	})
}

func TestFindOpportunityByID(t *testing.T) {
	t.Run("returns opportunity when found", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, soql string, out any) error {
				assert.Contains(t, soql, "Id = '006xx'")
				assert.Contains(t, soql, "LIMIT 1")

				opps := out.(*[]Opportunity)
				*opps = []Opportunity{
					{ID: "006xx", Name: "Globex - Invoice Portal"},
				}
				return nil
			},
		}

		opp, err := FindOpportunityByID(context.Background(), mock, "006xx")
		require.NoError(t, err)
		require.NotNil(t, opp)
		assert.Equal(t, "006xx", opp.ID)
	})

	t.Run("returns nil when not found", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, _ string, out any) error {
				opps := out.(*[]Opportunity)
				*opps = []Opportunity{}
				return nil
			},
		}

		opp, err := FindOpportunityByID(context.Background(), mock, "006notfound")
		require.NoError(t, err)
		assert.Nil(t, opp)
	})

	t.Run("returns error on query failure", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, _ string, _ any) error {
				return errors.New("timeout")
			},
		}

		opp, err := FindOpportunityByID(context.Background(), mock, "006xx")
		assert.Error(t, err)
		assert.Nil(t, opp)
		assert.Contains(t, err.Error(), "find opportunity by id")
	})
}

func TestEscapeSoql(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Globex Portal", "Globex Portal"},
		{"O'Brien Logistics", "O\\'Brien Logistics"},
		{"it's a test's case", "it\\'s a test\\'s case"},
		{"no-quotes", "no-quotes"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeSoql(tt.input))
		})
	}
}

func TestSOQLContainsAllOpportunityFields(t *testing.T) {
	mock := &mockClient{
		queryFn: func(_ context.Context, soql string, out any) error {
			for _, field := range opportunityFields {
				assert.Contains(t, soql, field, "SOQL should contain field: %s", field)
			}
			opps := out.(*[]Opportunity)
			*opps = []Opportunity{}
			return nil
		},
	}

	_, _ = FindOpportunityByName(context.Background(), mock, "Globex - Invoice Portal")
}
