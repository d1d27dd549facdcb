package identity

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/identityplatform"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// SetupIdentity enables Identity Platform (firebase) with email/password and
// Google sign-in.
func SetupIdentity(ctx *pulumi.Context, prov *gcp.Provider) (*identityplatform.Config, error) {
	svc, err := projects.NewService(ctx, "identityToolkitService", &projects.ServiceArgs{
		Service: pulumi.String("identitytoolkit.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}

	cfg, err := identityplatform.NewConfig(ctx,
		"identityPlatformConfig",
		&identityplatform.ConfigArgs{
			SignIn: &identityplatform.ConfigSignInArgs{
				Email: &identityplatform.ConfigSignInEmailArgs{
					Enabled:          pulumi.Bool(true),
					PasswordRequired: pulumi.Bool(true),
				},
			},
		},
		pulumi.Provider(prov),
		pulumi.DependsOn([]pulumi.Resource{svc}),
	)
	if err != nil {
		return nil, err
	}

	googleCfg := config.New(ctx, "google")
	_, err = identityplatform.NewDefaultSupportedIdpConfig(ctx, "googleSignIn",
		&identityplatform.DefaultSupportedIdpConfigArgs{
			Enabled:      pulumi.Bool(true),
			IdpId:        pulumi.String("google.com"),
			ClientId:     pulumi.String(googleCfg.Require("clientId")),
			ClientSecret: googleCfg.RequireSecret("clientSecret"),
		},
		pulumi.Provider(prov),
		pulumi.DependsOn([]pulumi.Resource{cfg}),
	)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
