package n8n

import (
	"context"
	"log/slog"
	"strings"
)

// A Code node opts in to snippet deployment by carrying a marker comment
// in its source. Both spellings occur in existing workflows.
const (
	snippetMarker    = "# snippet: "
	altSnippetMarker = "# @snippet: "
)

// Deployer pushes snippet code into the workflow Code nodes that reference
// it.
type Deployer struct {
	client *Client
	logger *slog.Logger

	// DryRun reports what would change without writing anything.
	DryRun bool
}

// NewDeployer creates a deployer using the given client.
func NewDeployer(client *Client, logger *slog.Logger) *Deployer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deployer{client: client, logger: logger}
}

// DeploySnippet rewrites every Code node referencing the snippet across
// all workflows on the instance. It returns the number of workflows with
// matching nodes, which in a dry run is the number that would be updated.
func (d *Deployer) DeploySnippet(ctx context.Context, snippetID, code string) (int, error) {
	if !strings.Contains(code, snippetMarker+snippetID) {
		code = snippetMarker + snippetID + "\n" + code
	}

	summaries, err := d.client.ListWorkflows(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, summary := range summaries {
		workflow, err := d.client.GetWorkflow(ctx, summary.ID())
		if err != nil {
			return updated, err
		}

		nodes := matchingCodeNodes(workflow, snippetID)
		if len(nodes) == 0 {
			continue
		}
		d.logger.Info("found matching code nodes",
			"workflow", workflow.Name(),
			"snippet", snippetID,
			"nodes", len(nodes))

		for _, node := range nodes {
			setNodeCode(node, code)
		}

		if d.DryRun {
			d.logger.Info("dry run, not updating workflow", "workflow", workflow.Name())
		} else {
			if err := d.client.UpdateWorkflow(ctx, workflow.ID(), workflow); err != nil {
				return updated, err
			}
			d.logger.Info("updated workflow", "workflow", workflow.Name())
		}
		updated++
	}

	return updated, nil
}

// matchingCodeNodes returns the Code nodes whose source carries the
// snippet's marker. The returned maps alias the workflow document, so
// editing them edits the workflow.
func matchingCodeNodes(workflow Workflow, snippetID string) []map[string]any {
	var matched []map[string]any

	nodes, _ := workflow["nodes"].([]any)
	for _, raw := range nodes {
		node, ok := raw.(map[string]any)
		if !ok || node["type"] != codeNodeType {
			continue
		}
		code := nodeCode(node)
		if strings.Contains(code, snippetMarker+snippetID) ||
			strings.Contains(code, altSnippetMarker+snippetID) {
			matched = append(matched, node)
		}
	}
	return matched
}

func nodeCode(node map[string]any) string {
	params, _ := node["parameters"].(map[string]any)
	if code, ok := params["jsCode"].(string); ok && code != "" {
		return code
	}
	code, _ := params["pythonCode"].(string)
	return code
}

func setNodeCode(node map[string]any, code string) {
	params, _ := node["parameters"].(map[string]any)
	if params == nil {
		return
	}
	if _, ok := params["pythonCode"]; ok {
		params["pythonCode"] = code
	} else {
		params["jsCode"] = code
	}
}
