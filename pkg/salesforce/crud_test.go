package salesforce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOpportunity(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var capturedObject string
		var capturedFields map[string]any
		mc := &mockClient{
			insertOneFn: func(_ context.Context, sObject string, record map[string]any) (string, error) {
				capturedObject = sObject
				capturedFields = record
				return "006NEW", nil
			},
		}

		fields := map[string]any{
			"Name":      "Globex - Invoice Portal",
			"StageName": "Proposal",
			"CloseDate": "2026-10-31",
			"Amount":    84500.0,
		}
		id, err := CreateOpportunity(context.Background(), mc, fields)
		require.NoError(t, err)
		assert.Equal(t, "006NEW", id)
		assert.Equal(t, "Opportunity", capturedObject)
		assert.Equal(t, "Globex - Invoice Portal", capturedFields["Name"])
		assert.Equal(t, 84500.0, capturedFields["Amount"])
	})

	t.Run("missing name", func(t *testing.T) {
		mc := &mockClient{}
		_, err := CreateOpportunity(context.Background(), mc, map[string]any{
			"StageName": "Proposal",
			"CloseDate": "2026-10-31",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Name is required")
	})

	t.Run("empty stage", func(t *testing.T) {
		mc := &mockClient{}
		_, err := CreateOpportunity(context.Background(), mc, map[string]any{
			"Name":      "Globex - Invoice Portal",
			"StageName": "",
			"CloseDate": "2026-10-31",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "StageName is required")
	})

	t.Run("missing close date", func(t *testing.T) {
		mc := &mockClient{}
		_, err := CreateOpportunity(context.Background(), mc, map[string]any{
			"Name":      "Globex - Invoice Portal",
			"StageName": "Proposal",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "CloseDate is required")
	})

	t.Run("propagates error", func(t *testing.T) {
		mc := &mockClient{
			insertOneFn: func(_ context.Context, _ string, _ map[string]any) (string, error) {
				return "", errors.New("api error")
			},
		}
		_, err := CreateOpportunity(context.Background(), mc, map[string]any{
			"Name":      "Globex - Invoice Portal",
			"StageName": "Proposal",
			"CloseDate": "2026-10-31",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "create opportunity")
	})
}

func TestUpdateOpportunity(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var capturedID string
		var capturedFields map[string]any
		mock := &mockClient{
			updateOneFn: func(_ context.Context, sObject string, id string, fields map[string]any) error {
				assert.Equal(t, "Opportunity", sObject)
				capturedID = id
				capturedFields = fields
				return nil
			},
		}

		fields := map[string]any{"Amount": 92000.0, "StageName": "Negotiation"}
		err := UpdateOpportunity(context.Background(), mock, "006xx", fields)
		require.NoError(t, err)
		assert.Equal(t, "006xx", capturedID)
		assert.Equal(t, 92000.0, capturedFields["Amount"])
	})

	t.Run("empty id", func(t *testing.T) {
		mock := &mockClient{}
		err := UpdateOpportunity(context.Background(), mock, "", map[string]any{"Amount": 1.0})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "opportunity id is required")
	})

	t.Run("empty fields", func(t *testing.T) {
		mock := &mockClient{}
		err := UpdateOpportunity(context.Background(), mock, "006xx", map[string]any{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no fields to update")
	})

	t.Run("nil fields", func(t *testing.T) {
		mock := &mockClient{}
		err := UpdateOpportunity(context.Background(), mock, "006xx", nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no fields to update")
	})

	t.Run("propagates error", func(t *testing.T) {
		mock := &mockClient{
			updateOneFn: func(_ context.Context, _ string, _ string, _ map[string]any) error {
				return errors.New("unauthorized")
			},
		}

		err := UpdateOpportunity(context.Background(), mock, "006xx", map[string]any{"Amount": 1.0})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "update opportunity")
	})
}
