package tools

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/lydakis/prism-mcp/internal/cliargs"
	"github.com/lydakis/prism-mcp/internal/config"
	"github.com/lydakis/prism-mcp/internal/prism"
	"github.com/lydakis/prism-mcp/internal/response"
)

const loggedOutMessage = "Successfully logged out"

type noArgs struct{}

func (noArgs) Validate() error { return nil }

type loginArgs struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a loginArgs) Validate() error {
	addr, err := mail.ParseAddress(a.Email)
	if err != nil || addr.Address != strings.TrimSpace(a.Email) {
		return invalidArgs("email %q is not a valid email address", a.Email)
	}
	return nil
}

type setURLArgs struct {
	URL string `json:"url"`
}

func (a setURLArgs) Validate() error {
	if err := config.ValidateURL(a.URL); err != nil {
		return invalidArgs("url: %v", err)
	}
	return nil
}

func authTools(d Deps) []Tool {
	return []Tool{
		NewTool("prism_me",
			"Check login status and display current user profile information",
			GroupAuth, emptySchema(),
			func(ctx context.Context, _ noArgs) (response.Result, error) {
				c, err := d.session()
				if err != nil {
					return response.Result{}, err
				}
				out, err := prism.Me(ctx, c)
				if err != nil {
					return response.Result{}, err
				}
				return response.Format(out, ""), nil
			}).withAction("get user info"),

		NewTool("prism_login",
			"Authenticate with Prismatic (requires email and password)",
			GroupAuth,
			objectSchema(map[string]any{
				"email":    formatProp("email", "Prismatic account email"),
				"password": stringProp("Prismatic account password"),
			}, "email", "password"),
			func(ctx context.Context, args loginArgs) (response.Result, error) {
				c, err := d.session()
				if err != nil {
					return response.Result{}, err
				}
				cmd := append([]string{"login"}, cliargs.Encode([]cliargs.Flag{
					cliargs.F("email", args.Email),
					cliargs.F("password", args.Password),
				})...)
				out, err := c.ExecuteCommand(ctx, cmd)
				if err != nil {
					return response.Result{}, err
				}
				return response.Output(strings.TrimSpace(out.Stdout)), nil
			}).withAction("login"),

		NewTool("prism_logout",
			"Log out of Prismatic",
			GroupAuth, emptySchema(),
			func(ctx context.Context, _ noArgs) (response.Result, error) {
				c, err := d.session()
				if err != nil {
					return response.Result{}, err
				}
				out, err := prism.Logout(ctx, c)
				if err != nil {
					return response.Result{}, err
				}
				if out == "" {
					out = loggedOutMessage
				}
				return response.Output(out), nil
			}).withAction("logout"),

		NewTool("prism_auth_status",
			"Report whether the Prismatic CLI has a logged-in user. This is a best-effort check based on the output of `prism me`",
			GroupAuth, emptySchema(),
			func(ctx context.Context, _ noArgs) (response.Result, error) {
				c, err := d.session()
				if err != nil {
					return response.Result{}, err
				}
				return response.Structured(prism.IsLoggedIn(ctx, c)), nil
			}).withAction("check login status"),

		NewTool("prism_set_url",
			"Set the Prismatic URL used for subsequent CLI operations",
			GroupAuth,
			objectSchema(map[string]any{
				"url": formatProp("uri", "Prismatic URL to use for CLI operations"),
			}, "url"),
			func(_ context.Context, args setURLArgs) (response.Result, error) {
				if _, err := d.Sessions.Session(args.URL); err != nil {
					return response.Result{}, err
				}
				d.logger().Info().Str("url", args.URL).Msg("prismatic url updated")
				return response.Output(fmt.Sprintf("Prismatic URL set to %s", args.URL)), nil
			}).withAction("set Prismatic URL"),

		NewTool("prism_version",
			"Show the version of the Prismatic CLI in use",
			GroupAuth, emptySchema(),
			func(ctx context.Context, _ noArgs) (response.Result, error) {
				c, err := d.session()
				if err != nil {
					return response.Result{}, err
				}
				out, err := prism.Version(ctx, c)
				if err != nil {
					return response.Result{}, err
				}
				return response.Output(out), nil
			}).withAction("get CLI version"),
	}
}
