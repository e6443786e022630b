package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lydakis/prism-mcp/internal/cliargs"
	"github.com/lydakis/prism-mcp/internal/config"
	"github.com/lydakis/prism-mcp/internal/prism"
	"github.com/lydakis/prism-mcp/internal/response"
)

var (
	// ErrFlowNotFound means no flow matched, or the match has no test URL.
	ErrFlowNotFound = errors.New("flow not found")
	// ErrTailWithoutTimeout rejects tailing requests that could run forever.
	ErrTailWithoutTimeout = errors.New("if tailing logs or step results via MCP server, a timeout (in seconds) is required")
	// ErrIntegrationIDRequired is returned when a flow URL must be looked up
	// but no integration was named.
	ErrIntegrationIDRequired = errors.New("integrationId is required when flowUrl is not provided")
)

type flowTestArgs struct {
	FlowURL            *string  `json:"flowUrl,omitempty"`
	FlowID             *string  `json:"flowId,omitempty"`
	FlowName           *string  `json:"flowName,omitempty"`
	IntegrationID      *string  `json:"integrationId,omitempty"`
	Payload            *string  `json:"payload,omitempty"`
	PayloadContentType *string  `json:"payloadContentType,omitempty"`
	Sync               *bool    `json:"sync,omitempty"`
	TailLogs           *bool    `json:"tailLogs,omitempty"`
	TailResults        *bool    `json:"tailResults,omitempty"`
	Timeout            *float64 `json:"timeout,omitempty"`
	ResultFile         *string  `json:"resultFile,omitempty"`
}

func (a flowTestArgs) Validate() error {
	if a.FlowURL != nil {
		if err := config.ValidateURL(*a.FlowURL); err != nil {
			return invalidArgs("flowUrl: %v", err)
		}
	}
	if a.Timeout != nil && *a.Timeout <= 0 {
		return invalidArgs("timeout must be positive, got %v", *a.Timeout)
	}
	return nil
}

func (a flowTestArgs) tailing() bool {
	return isTrue(a.TailLogs) || isTrue(a.TailResults)
}

func flowTestTool(d Deps) Tool {
	return NewTool("prism_integrations_flows_test",
		"Test a flow in an integration. Provide flowUrl, or integrationId with flowId or flowName to look the URL up",
		GroupIntegrations,
		objectSchema(map[string]any{
			"flowUrl":            formatProp("uri", "Test URL of the flow"),
			"flowId":             stringProp("ID of the flow (used with integrationId)"),
			"flowName":           stringProp("Name of the flow (used with integrationId)"),
			"integrationId":      stringProp("ID of the integration that owns the flow"),
			"payload":            stringProp("Payload to send to the flow"),
			"payloadContentType": stringProp("Content type of the payload"),
			"sync":               boolProp("Invoke the flow synchronously"),
			"tailLogs":           boolProp("Tail logs of the execution"),
			"tailResults":        boolProp("Tail step results of the execution"),
			"timeout":            numberProp("Maximum time to tail for logs and step results (in seconds)."),
			"resultFile":         stringProp("File to write step results to"),
		}),
		func(ctx context.Context, args flowTestArgs) (response.Result, error) {
			if args.tailing() && args.Timeout == nil {
				return response.Result{}, ErrTailWithoutTimeout
			}

			c, err := d.session()
			if err != nil {
				return response.Result{}, err
			}

			flowURL := deref(args.FlowURL)
			if flowURL == "" {
				integrationID := deref(args.IntegrationID)
				if integrationID == "" {
					return response.Result{}, ErrIntegrationIDRequired
				}
				flowURL, err = lookupFlowURL(ctx, c, integrationID, deref(args.FlowID), deref(args.FlowName))
				if err != nil {
					return response.Result{}, err
				}
			}

			cmd := []string{"integrations:flows:test", "--flow-url", flowURL, "--jsonl", "--succinct"}
			cmd = append(cmd, cliargs.Encode([]cliargs.Flag{
				cliargs.F("payload", args.Payload),
				cliargs.F("payload-content-type", args.PayloadContentType),
				cliargs.F("sync", args.Sync),
				cliargs.F("tail-logs", args.TailLogs),
				cliargs.F("tail-results", args.TailResults),
				cliargs.F("timeout", args.Timeout),
				cliargs.F("result-file", args.ResultFile),
			})...)

			out, err := c.ExecuteCommand(ctx, cmd)
			if err != nil {
				return response.Result{}, err
			}
			return response.Output(strings.TrimSpace(out.Stdout)), nil
		}).withAction("test flow")
}

type flowRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TestURL string `json:"testUrl"`
	URL     string `json:"url"`
}

func (f flowRecord) invokeURL() string {
	if f.TestURL != "" {
		return f.TestURL
	}
	return f.URL
}

// lookupFlowURL lists the integration's flows and returns the test URL of
// the one matching flowID or flowName.
func lookupFlowURL(ctx context.Context, c prism.Commander, integrationID, flowID, flowName string) (string, error) {
	if flowID == "" && flowName == "" {
		return "", fmt.Errorf("flowId or flowName is required when flowUrl is not provided")
	}

	out, err := c.ExecuteCommand(ctx, []string{"integrations:flows:list", integrationID, "--extended", "--output", "json"})
	if err != nil {
		return "", err
	}

	var flows []flowRecord
	if err := json.Unmarshal([]byte(strings.TrimSpace(out.Stdout)), &flows); err != nil {
		return "", fmt.Errorf("parsing flows of integration %s: %w", integrationID, err)
	}

	for _, f := range flows {
		if (flowID != "" && f.ID == flowID) || (flowName != "" && f.Name == flowName) {
			if url := f.invokeURL(); url != "" {
				return url, nil
			}
			return "", fmt.Errorf("%w: flow %s has no test URL", ErrFlowNotFound, describeFlow(f.ID, f.Name))
		}
	}
	return "", fmt.Errorf("%w: %s in integration %s", ErrFlowNotFound, describeFlow(flowID, flowName), integrationID)
}

func describeFlow(id, name string) string {
	switch {
	case id != "" && name != "":
		return fmt.Sprintf("%q (%s)", name, id)
	case id != "":
		return id
	default:
		return fmt.Sprintf("%q", name)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
