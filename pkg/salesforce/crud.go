package salesforce

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
)

// UpdateOpportunity updates an Opportunity record with the given fields.
func UpdateOpportunity(ctx context.Context, c Client, opportunityID string, fields map[string]any) error {
	if opportunityID == "" {
		return eris.New("sf: opportunity id is required")
	}
	if len(fields) == 0 {
		return eris.New("sf: no fields to update")
	}
	if err := c.UpdateOne(ctx, "Opportunity", opportunityID, fields); err != nil {
		return eris.Wrap(err, fmt.Sprintf("sf: update opportunity %s", opportunityID))
	}
	return nil
}

// CreateOpportunity creates a new Opportunity record and returns the new
// Salesforce ID. Name, StageName and CloseDate are required by the API.
func CreateOpportunity(ctx context.Context, c Client, fields map[string]any) (string, error) {
	for _, f := range []string{"Name", "StageName", "CloseDate"} {
		if fields[f] == nil || fields[f] == "" {
			return "", eris.Errorf("sf: opportunity %s is required", f)
		}
	}
	id, err := c.InsertOne(ctx, "Opportunity", fields)
	if err != nil {
		return "", eris.Wrap(err, "sf: create opportunity")
	}
	return id, nil
}
