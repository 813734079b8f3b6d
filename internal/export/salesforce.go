package export

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/pkg/salesforce"
)

// Stage and close-date horizon stamped on opportunities this tool creates.
// Existing opportunities keep whatever stage the account team set.
const (
	proposalStage = "Proposal"
	closeMonths   = 3
)

// SalesforceSyncer pushes priced assessments into Salesforce as
// opportunities, matched by name.
type SalesforceSyncer struct {
	client salesforce.Client
}

// NewSalesforceSyncer returns a syncer over the given client.
func NewSalesforceSyncer(c salesforce.Client) *SalesforceSyncer {
	return &SalesforceSyncer{client: c}
}

// Sync upserts one opportunity for the summary and returns its ID. The
// summary must carry an assessment and a cost result; estimate and
// timeline figures are included when present.
func (s *SalesforceSyncer) Sync(ctx context.Context, sum Summary) (string, error) {
	if sum.Assessment == nil || sum.Cost == nil {
		return "", eris.New("export: salesforce sync needs an assessment and a cost result")
	}
	name := OpportunityName(sum.Assessment)
	if name == "" {
		return "", eris.New("export: assessment has no client or title")
	}

	cost := sum.Cost.Rounded()
	fields := map[string]any{
		"Amount":              cost.PriceAfterDiscount,
		"Discount_Amount__c":  cost.DiscountAmount,
		"Estimated_Cost__c":   cost.TotalCost,
		"Projected_Profit__c": cost.ProfitAmount,
		"Profit_Percent__c":   cost.ProfitPercent,
	}
	if sum.Estimates != nil {
		fields["Estimated_Hours__c"] = sum.Estimates.TotalHours()
	}
	if sum.Timeline != nil {
		fields["Delivery_Days__c"] = sum.Timeline.TotalDays
	}

	existing, err := salesforce.FindOpportunityByName(ctx, s.client, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := salesforce.UpdateOpportunity(ctx, s.client, existing.ID, fields); err != nil {
			return "", err
		}
		zap.L().Info("export: opportunity updated",
			zap.String("id", existing.ID),
			zap.String("name", name))
		return existing.ID, nil
	}

	fields["Name"] = name
	fields["StageName"] = proposalStage
	fields["CloseDate"] = time.Now().AddDate(0, closeMonths, 0).Format("2006-01-02")
	id, err := salesforce.CreateOpportunity(ctx, s.client, fields)
	if err != nil {
		return "", err
	}
	zap.L().Info("export: opportunity created",
		zap.String("id", id),
		zap.String("name", name))
	return id, nil
}

// OpportunityName derives the opportunity name for an assessment:
// "Client - Title", degrading to whichever part is set.
func OpportunityName(a *model.Assessment) string {
	client := strings.TrimSpace(a.Client)
	title := strings.TrimSpace(a.Title)
	switch {
	case client == "":
		return title
	case title == "":
		return client
	default:
		return client + " - " + title
	}
}
