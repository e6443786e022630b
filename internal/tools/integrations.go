package tools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lydakis/prism-mcp/internal/cliargs"
	"github.com/lydakis/prism-mcp/internal/prism"
	"github.com/lydakis/prism-mcp/internal/response"
	"gopkg.in/yaml.v3"
)

const integrationNamePattern = `^[a-zA-Z0-9_-]+$`

var integrationNameRe = regexp.MustCompile(integrationNamePattern)

// ErrReplaceWithoutID is returned when an import asks to replace an
// integration without naming it.
var ErrReplaceWithoutID = errors.New("integrationId is required when replace is true")

type integrationInitArgs struct {
	Name      string  `json:"name"`
	Directory *string `json:"directory,omitempty"`
}

func (a integrationInitArgs) Validate() error {
	if a.Name == "" {
		return invalidArgs("name must not be empty")
	}
	if !integrationNameRe.MatchString(a.Name) {
		return invalidArgs("name %q must be alphanumeric with hyphens and underscores only", a.Name)
	}
	return nil
}

type integrationConvertArgs struct {
	YAMLFile       string  `json:"yamlFile"`
	Folder         *string `json:"folder,omitempty"`
	RegistryPrefix *string `json:"registryPrefix,omitempty"`
}

func (a integrationConvertArgs) Validate() error {
	if strings.TrimSpace(a.YAMLFile) == "" {
		return invalidArgs("yamlFile must not be empty")
	}
	return nil
}

type integrationImportArgs struct {
	Directory     *string `json:"directory,omitempty"`
	Path          *string `json:"path,omitempty"`
	Replace       bool    `json:"replace,omitempty"`
	IntegrationID *string `json:"integrationId,omitempty"`
}

func (a integrationImportArgs) Validate() error { return nil }

type flowListArgs struct {
	IntegrationID string  `json:"integrationId"`
	Columns       *string `json:"columns,omitempty"`
}

func (a flowListArgs) Validate() error {
	if strings.TrimSpace(a.IntegrationID) == "" {
		return invalidArgs("integrationId must not be empty")
	}
	return nil
}

func integrationTools(d Deps) []Tool {
	return []Tool{
		NewTool("prism_integrations_list",
			"List all integrations in your organization",
			GroupIntegrations, emptySchema(),
			func(ctx context.Context, _ noArgs) (response.Result, error) {
				return runFormatted(ctx, d, "integrations", "integrations:list", cliargs.F("output", "json"))
			}).withAction("list integrations"),

		NewTool("prism_integrations_init",
			"Initialize a new Code Native Integration",
			GroupIntegrations,
			objectSchema(map[string]any{
				"name":      patternProp(integrationNamePattern, "Name of the integration (alphanumeric, hyphens, underscores)"),
				"directory": stringProp("Directory to create the integration in"),
			}, "name"),
			func(ctx context.Context, args integrationInitArgs) (response.Result, error) {
				return runOutput(ctx, d, []string{"integrations:init", args.Name},
					cliargs.F("directory", args.Directory))
			}).withAction("initialize integration"),

		NewTool("prism_integrations_convert",
			"Convert a Low-Code Integration's YAML file into a Code Native Integration",
			GroupIntegrations,
			objectSchema(map[string]any{
				"yamlFile":       stringProp("Path to the Low-Code Integration YAML file"),
				"folder":         stringProp("Folder to write the Code Native Integration to"),
				"registryPrefix": stringProp("Registry prefix for custom components"),
			}, "yamlFile"),
			func(ctx context.Context, args integrationConvertArgs) (response.Result, error) {
				c, err := d.session()
				if err != nil {
					return response.Result{}, err
				}
				if err := checkYAMLFile(resolvePath(c, args.YAMLFile)); err != nil {
					return response.Result{}, err
				}
				return runOutputWith(ctx, c, []string{"integrations:convert"}, nil,
					cliargs.F("yamlFile", args.YAMLFile),
					cliargs.F("folder", args.Folder),
					cliargs.F("registryPrefix", args.RegistryPrefix))
			}).withAction("convert integration"),

		NewTool("prism_integrations_import",
			"Import an integration from a YAML definition or a Code Native Integration directory. Set replace with integrationId to overwrite an existing integration",
			GroupIntegrations,
			objectSchema(map[string]any{
				"directory":     stringProp("Code Native Integration directory to import from"),
				"path":          stringProp("Path to an integration YAML definition"),
				"replace":       boolProp("Replace an existing integration (requires integrationId)"),
				"integrationId": stringProp("ID of the integration to replace"),
			}),
			func(ctx context.Context, args integrationImportArgs) (response.Result, error) {
				if args.Replace && (args.IntegrationID == nil || strings.TrimSpace(*args.IntegrationID) == "") {
					return response.Result{}, ErrReplaceWithoutID
				}

				c, err := d.session()
				if err != nil {
					return response.Result{}, err
				}

				var opts []prism.ExecOption
				if args.Directory != nil && strings.TrimSpace(*args.Directory) != "" {
					opts = append(opts, prism.WithDir(resolvePath(c, *args.Directory)))
				}
				if args.Path != nil && isYAMLPath(*args.Path) {
					if err := checkYAMLFile(resolvePath(c, *args.Path)); err != nil {
						return response.Result{}, err
					}
				}

				return runOutputWith(ctx, c, []string{"integrations:import"}, opts,
					cliargs.F("path", args.Path),
					cliargs.F("integrationId", args.IntegrationID))
			}).withAction("import integration"),

		NewTool("prism_integrations_flows_list",
			"List flows for an integration",
			GroupIntegrations,
			objectSchema(map[string]any{
				"integrationId": stringProp("ID of the integration"),
				"columns":       stringProp("Only show provided columns (comma-separated)"),
			}, "integrationId"),
			func(ctx context.Context, args flowListArgs) (response.Result, error) {
				c, err := d.session()
				if err != nil {
					return response.Result{}, err
				}
				cmd := append([]string{"integrations:flows:list", args.IntegrationID}, cliargs.Encode([]cliargs.Flag{
					cliargs.F("extended", true),
					cliargs.F("columns", args.Columns),
					cliargs.F("output", "json"),
				})...)
				out, err := c.ExecuteCommand(ctx, cmd)
				if err != nil {
					return response.Result{}, err
				}
				return response.Format(out.Stdout, "flows"), nil
			}).withAction("list flows"),

		flowTestTool(d),
	}
}

// runFormatted runs base plus flags and formats stdout under wrapKey.
func runFormatted(ctx context.Context, d Deps, wrapKey, base string, flags ...cliargs.Flag) (response.Result, error) {
	c, err := d.session()
	if err != nil {
		return response.Result{}, err
	}
	out, err := c.ExecuteCommand(ctx, append([]string{base}, cliargs.Encode(flags)...))
	if err != nil {
		return response.Result{}, err
	}
	return response.Format(out.Stdout, wrapKey), nil
}

// runOutput runs base plus flags and returns the trimmed stdout as
// {"output": ...}.
func runOutput(ctx context.Context, d Deps, base []string, flags ...cliargs.Flag) (response.Result, error) {
	c, err := d.session()
	if err != nil {
		return response.Result{}, err
	}
	return runOutputWith(ctx, c, base, nil, flags...)
}

func runOutputWith(ctx context.Context, c prism.Commander, base []string, opts []prism.ExecOption, flags ...cliargs.Flag) (response.Result, error) {
	args := make([]string, 0, len(base)+2*len(flags))
	args = append(args, base...)
	args = append(args, cliargs.Encode(flags)...)

	out, err := c.ExecuteCommand(ctx, args, opts...)
	if err != nil {
		return response.Result{}, err
	}
	return response.Output(strings.TrimSpace(out.Stdout)), nil
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(path))) {
	case ".yml", ".yaml":
		return true
	}
	return false
}

// checkYAMLFile fails early on a missing or unparsable YAML definition so
// the CLI is not started for input it would reject.
func checkYAMLFile(path string) error {
	data, err := readFileFn(path)
	if err != nil {
		return fmt.Errorf("reading YAML file %q: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing YAML file %q: %w", path, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("YAML file %q must contain a mapping at the top level", path)
	}
	return nil
}
