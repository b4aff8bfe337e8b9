package repository_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/deplist/pkg/repository"
	"github.com/matzehuels/deplist/pkg/spec"
)

func ExampleDatabase() {
	db := repository.NewDatabase()
	db.AcceptKeywords("amd64")
	db.MustAdd(repository.PackageDef{ID: "app-misc/foo-1.0", Keywords: []string{"amd64"}}, false)
	db.MustAdd(repository.PackageDef{ID: "app-misc/foo-2.0", Keywords: []string{"~amd64"}}, false)

	ctx := context.Background()
	pkgs, _ := db.Find(ctx, repository.Query{Name: spec.MustParseQualifiedName("app-misc/foo")})
	for _, p := range pkgs {
		masks, _ := db.Masks(ctx, p)
		fmt.Println(p, masks)
	}
	// Output:
	// app-misc/foo-1.0:0::main []
	// app-misc/foo-2.0:0::main [tilde_keyword (~amd64)]
}
