package nodestyle

// Style is how a node type is drawn on the canvas
type Style struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// DefaultType is the table key used for node types without their own entry
const DefaultType = "default"

var table = map[string]Style{
	DefaultType:          {Color: "#6B7280", Icon: "box"},
	"Webhook":            {Color: "#8B5CF6", Icon: "webhook"},
	"Schedule Trigger":   {Color: "#8B5CF6", Icon: "clock"},
	"Manual Trigger":     {Color: "#8B5CF6", Icon: "play"},
	"HTTP Request":       {Color: "#3B82F6", Icon: "globe"},
	"IF":                 {Color: "#F59E0B", Icon: "git-branch"},
	"Switch":             {Color: "#F59E0B", Icon: "shuffle"},
	"SplitInBatches":     {Color: "#F59E0B", Icon: "layers"},
	"Function":           {Color: "#10B981", Icon: "code"},
	"Code":               {Color: "#10B981", Icon: "code"},
	"Set":                {Color: "#14B8A6", Icon: "edit"},
	"Error":              {Color: "#EF4444", Icon: "alert-triangle"},
	"Telegram":           {Color: "#0EA5E9", Icon: "send"},
	"Slack":              {Color: "#4A154B", Icon: "message-square"},
	"Discord":            {Color: "#5865F2", Icon: "message-circle"},
	"Email":              {Color: "#EC4899", Icon: "mail"},
	"NoOperation":        {Color: "#9CA3AF", Icon: "minus"},
	"Wait":               {Color: "#A855F7", Icon: "pause"},
	"Respond to Webhook": {Color: "#8B5CF6", Icon: "corner-down-left"},
	"Execute Command":    {Color: "#64748B", Icon: "terminal"},
	"GoogleSheets":       {Color: "#22C55E", Icon: "table"},
}

// Lookup returns the style for a node type, falling back to the default entry
func Lookup(nodeType string) Style {
	if style, ok := table[nodeType]; ok {
		return style
	}
	return table[DefaultType]
}

// For returns the styles of the given node types, keyed by type
func For(types []string) map[string]Style {
	styles := make(map[string]Style, len(types))
	for _, nodeType := range types {
		styles[nodeType] = Lookup(nodeType)
	}
	return styles
}

// All returns a copy of the whole table, including the default entry
func All() map[string]Style {
	styles := make(map[string]Style, len(table))
	for nodeType, style := range table {
		styles[nodeType] = style
	}
	return styles
}
