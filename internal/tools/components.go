package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/lydakis/prism-mcp/internal/cliargs"
	"github.com/lydakis/prism-mcp/internal/prism"
	"github.com/lydakis/prism-mcp/internal/response"
)

type componentInitArgs struct {
	Name        string  `json:"name"`
	Directory   *string `json:"directory,omitempty"`
	WSDLPath    *string `json:"wsdlPath,omitempty"`
	OpenAPIPath *string `json:"openApiPath,omitempty"`
}

func (a componentInitArgs) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return invalidArgs("name must not be empty")
	}
	return nil
}

type componentPublishArgs struct {
	Directory            string  `json:"directory"`
	Comment              *string `json:"comment,omitempty"`
	Customer             *string `json:"customer,omitempty"`
	SkipOnSignatureMatch *bool   `json:"skipOnSignatureMatch,omitempty"`
}

func (a componentPublishArgs) Validate() error {
	if strings.TrimSpace(a.Directory) == "" {
		return invalidArgs("directory must not be empty")
	}
	return nil
}

func componentTools(d Deps) []Tool {
	return []Tool{
		NewTool("prism_components_list",
			"List all components available in your organization",
			GroupComponents, emptySchema(),
			func(ctx context.Context, _ noArgs) (response.Result, error) {
				return runFormatted(ctx, d, "components", "components:list", cliargs.F("output", "json"))
			}).withAction("list components"),

		NewTool("prism_components_init",
			"Initialize a new Component",
			GroupComponents,
			objectSchema(map[string]any{
				"name":        stringProp("Name of the component"),
				"directory":   stringProp("Directory to create the component in"),
				"wsdlPath":    stringProp("Path to a WSDL file to generate the component from"),
				"openApiPath": stringProp("Path to an OpenAPI spec to generate the component from"),
			}, "name"),
			func(ctx context.Context, args componentInitArgs) (response.Result, error) {
				c, err := d.session()
				if err != nil {
					return response.Result{}, err
				}
				var opts []prism.ExecOption
				if dir := deref(args.Directory); dir != "" {
					opts = append(opts, prism.WithDir(resolvePath(c, dir)))
				}
				return runOutputWith(ctx, c, []string{"components:init", args.Name}, opts,
					cliargs.F("wsdl-path", args.WSDLPath),
					cliargs.F("open-api-path", args.OpenAPIPath))
			}).withAction("initialize component"),

		NewTool("prism_components_publish",
			"Build a component and publish it to Prismatic",
			GroupComponents,
			objectSchema(map[string]any{
				"directory":            stringProp("Component directory (relative to the working directory or absolute)"),
				"comment":              stringProp("Comment to attach to this version"),
				"customer":             stringProp("Customer ID to publish the component for"),
				"skipOnSignatureMatch": boolProp("Skip publishing when the signature matches the published version"),
			}, "directory"),
			func(ctx context.Context, args componentPublishArgs) (response.Result, error) {
				c, err := d.session()
				if err != nil {
					return response.Result{}, err
				}

				dir := resolvePath(c, args.Directory)
				info, err := statFn(dir)
				if err != nil {
					return response.Result{}, fmt.Errorf("component directory %q: %w", dir, err)
				}
				if !info.IsDir() {
					return response.Result{}, fmt.Errorf("component directory %q is not a directory", dir)
				}

				if err := d.build(ctx, dir); err != nil {
					return response.Result{}, err
				}

				return runOutputWith(ctx, c, []string{"components:publish", "--no-confirm"},
					[]prism.ExecOption{prism.WithDir(dir)},
					cliargs.F("comment", args.Comment),
					cliargs.F("customer", args.Customer),
					cliargs.F("skip-on-signature-match", args.SkipOnSignatureMatch))
			}).withAction("publish component"),
	}
}

func (d Deps) build(ctx context.Context, dir string) error {
	build := d.Build
	if build == nil {
		build = BuildStep("")
	}

	d.logger().Info().Str("dir", dir).Msg("building component")
	if _, err := build(ctx, dir); err != nil {
		return fmt.Errorf("component build failed: %w", err)
	}
	return nil
}
