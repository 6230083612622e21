package domain

// SampleWorkflow returns the demo document offered before the user uploads one
func SampleWorkflow() Workflow {
	connections := Connections{}
	connections.Add("webhook", PortMain, "validate")
	connections.Add("validate", PortMain, "check")
	connections.Add("check", "true", "fetch")
	connections.Add("check", "false", "notify")
	connections.Add("fetch", PortMain, "transform")
	connections.Add("transform", PortMain, "email")

	return Workflow{
		Nodes: []WorkflowNode{
			{ID: "webhook", Name: "Incoming Order", Type: "Webhook", Parameters: map[string]interface{}{"path": "orders", "httpMethod": "POST"}},
			{ID: "validate", Name: "Validate Payload", Type: "Function"},
			{ID: "check", Name: "Is Paid?", Type: "IF", Parameters: map[string]interface{}{"field": "status", "equals": "paid"}},
			{ID: "fetch", Name: "Fetch Customer", Type: "HTTP Request", Parameters: map[string]interface{}{"url": "https://api.example.com/customers", "method": "GET"}},
			{ID: "transform", Name: "Build Receipt", Type: "Set"},
			{ID: "email", Name: "Send Receipt", Type: "Email"},
			{ID: "notify", Name: "Notify Sales", Type: "Telegram"},
		},
		Connections: connections,
	}
}
