package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/honari/reading-backend/infra/cloudrun"
	"github.com/honari/reading-backend/infra/docker"
	"github.com/honari/reading-backend/infra/firestore"
	"github.com/honari/reading-backend/infra/identity"
	"github.com/honari/reading-backend/infra/provider"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity platform with email/password and google sign-in
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// enable firestore and create a database for the project
		db, err := firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		_, err = cloudrun.SetupCloudRun(ctx, prov, ident, db, repo)
		if err != nil {
			return err
		}

		return nil
	})
}
