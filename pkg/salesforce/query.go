package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Opportunity represents a Salesforce Opportunity record.
type Opportunity struct {
	ID          string  `json:"Id" salesforce:"Id"`
	Name        string  `json:"Name" salesforce:"Name"`
	AccountID   string  `json:"AccountId" salesforce:"AccountId"`
	StageName   string  `json:"StageName" salesforce:"StageName"`
	Amount      float64 `json:"Amount" salesforce:"Amount"`
	Probability float64 `json:"Probability" salesforce:"Probability"`
	CloseDate   string  `json:"CloseDate" salesforce:"CloseDate"`
	Description string  `json:"Description" salesforce:"Description"`
}

// opportunityFields are the SOQL fields selected for Opportunity queries.
var opportunityFields = []string{
	"Id", "Name", "AccountId", "StageName",
	"Amount", "Probability", "CloseDate", "Description",
}

// FindOpportunityByName queries Salesforce for an Opportunity with the given name.
// Returns nil if no opportunity is found.
func FindOpportunityByName(ctx context.Context, c Client, name string) (*Opportunity, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Opportunity WHERE Name = '%s' LIMIT 1",
		strings.Join(opportunityFields, ", "),
		escapeSoql(name),
	)

	var opps []Opportunity
	if err := c.Query(ctx, soql, &opps); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find opportunity by name %s", name))
	}
	if len(opps) == 0 {
		return nil, nil
	}
	return &opps[0], nil
}

// FindOpportunityByID queries Salesforce for an Opportunity by its ID.
// Returns nil if no opportunity is found.
func FindOpportunityByID(ctx context.Context, c Client, id string) (*Opportunity, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Opportunity WHERE Id = '%s' LIMIT 1",
		strings.Join(opportunityFields, ", "),
		escapeSoql(id),
	)

	var opps []Opportunity
	if err := c.Query(ctx, soql, &opps); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find opportunity by id %s", id))
	}
	if len(opps) == 0 {
		return nil, nil
	}
	return &opps[0], nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
