package analyzer

import "n8n-optimizer/src/core/domain"

// branchingTypes add to the complexity score on top of their node count
var branchingTypes = map[string]bool{
	"IF":             true,
	"Switch":         true,
	"SplitInBatches": true,
}

// terminalTypes may end a flow without being reported as unused
var terminalTypes = map[string]bool{
	"Respond to Webhook": true,
	"NoOp":               true,
	"Stop":               true,
	"Wait":               true,
	"Telegram":           true,
	"Slack":              true,
	"Email":              true,
	"Discord":            true,
}

// slowTypes are reported as potentially slow
var slowTypes = map[string]bool{
	"HTTP Request":    true,
	"Execute Command": true,
	"SFTP":            true,
	"SSH":             true,
	"Wait":            true,
	"GoogleSheets":    true,
}

var missingErrorHandlingIssue = domain.Issue{
	Kind:        domain.IssueMissingErrorHandling,
	Severity:    domain.SeverityWarning,
	Title:       "Missing error handling",
	Description: "The workflow has no Error node and no node with error handling enabled. A single failing step will stop the whole execution.",
}

// httpWithoutErrorBranchIssue is reported for every workflow
var httpWithoutErrorBranchIssue = domain.Issue{
	Kind:        domain.IssueHTTPWithoutErrorBranch,
	Severity:    domain.SeverityCritical,
	Title:       "HTTP requests without error branches",
	Description: "HTTP Request nodes should route failed responses to a dedicated error branch instead of failing the workflow.",
}

func recommendations() []domain.Recommendation {
	return []domain.Recommendation{
		{
			Title:       "Add error handling",
			Description: "Attach an Error Trigger workflow or enable \"Continue On Fail\" on nodes that talk to external services.",
			Importance:  domain.ImportanceHigh,
		},
		{
			Title:       "Use caching",
			Description: "Store responses that rarely change so repeated executions skip the remote call.",
			Importance:  domain.ImportanceMedium,
		},
		{
			Title:       "Parallelize HTTP requests",
			Description: "Independent HTTP requests can run in parallel branches instead of one after another.",
			Importance:  domain.ImportanceMedium,
		},
	}
}

func optimizations() []domain.Optimization {
	return []domain.Optimization{
		{
			Title:       "Batch HTTP requests",
			Description: "Group items and send them in batches instead of issuing one request per item.",
			Benefit:     "Fewer round trips and less pressure on rate limited APIs.",
			Implementation: "1. Add a SplitInBatches node before the HTTP Request node.\n" +
				"2. Set the batch size to what the API accepts (for example 50).\n" +
				"3. Loop the HTTP Request output back into SplitInBatches until all items are sent.",
		},
		{
			Title:       "Cache results",
			Description: "Keep the results of expensive lookups and reuse them across executions.",
			Benefit:     "Faster executions and lower API usage.",
			Implementation: "1. Before the expensive node, read the cached value (Redis or workflow static data).\n" +
				"2. Use an IF node to skip the call when a fresh value exists.\n" +
				"3. After the call, write the result back with an expiry.",
		},
	}
}
